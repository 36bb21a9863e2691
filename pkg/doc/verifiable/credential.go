/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verifiable implements the credential model of the proof protocol:
// issuance, verification, revocation status and presentations.
package verifiable

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/trustfabric/trustkit-go/pkg/doc/ldcontext"
	docproof "github.com/trustfabric/trustkit-go/pkg/doc/signature/proof"
)

// VerifiableCredentialType is the base type every credential carries.
const VerifiableCredentialType = "VerifiableCredential"

const credentialSchema = `{
  "required": [
    "@context",
    "type",
    "credentialSubject",
    "issuer",
    "issuanceDate"
  ],
  "properties": {
    "@context": {
      "oneOf": [
        {
          "type": "string",
          "const": "https://www.w3.org/2018/credentials/v1"
        },
        {
          "type": "array",
          "items": [
            {
              "type": "string",
              "const": "https://www.w3.org/2018/credentials/v1"
            }
          ],
          "uniqueItems": true,
          "additionalItems": {
            "type": "string"
          }
        }
      ]
    },
    "id": {
      "type": "string",
      "format": "uri"
    },
    "type": {
      "oneOf": [
        {
          "type": "array",
          "items": [
            {
              "type": "string",
              "pattern": "^VerifiableCredential$"
            }
          ]
        },
        {
          "type": "string",
          "pattern": "^VerifiableCredential$"
        }
      ],
      "additionalItems": {
        "type": "string"
      }
    },
    "credentialSubject": {
      "type": "object"
    },
    "issuer": {
      "type": "string",
      "format": "uri"
    },
    "issuanceDate": {
      "type": "string",
      "format": "date-time"
    },
    "expirationDate": {
      "type": [
        "string",
        "null"
      ],
      "format": "date-time"
    },
    "credentialStatus": {
      "$ref": "#/definitions/typedID"
    },
    "previousCredential": {
      "type": "string",
      "format": "uri"
    },
    "proof": {
      "anyOf": [
        {
          "type": "object"
        },
        {
          "type": "null"
        }
      ]
    }
  },
  "definitions": {
    "typedID": {
      "anyOf": [
        {
          "type": "null"
        },
        {
          "type": "object",
          "required": [
            "id",
            "type"
          ],
          "properties": {
            "id": {
              "type": "string",
              "format": "uri"
            },
            "type": {
              "type": "string"
            }
          }
        }
      ]
    }
  }
}`

//nolint:gochecknoglobals
var schemaLoader = gojsonschema.NewStringLoader(credentialSchema)

// TypedID is a generic id+type pair used for credential status entries.
type TypedID struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type,omitempty"`
}

// Credential is the credential wire format. A credential carries at most one
// proof; once the proof is attached the credential is logically immutable and
// an update produces a new credential linking back to this one.
type Credential struct {
	Context            []string
	ID                 string
	Types              []string
	Issuer             string
	Subject            map[string]interface{}
	Issued             *time.Time
	Expired            *time.Time
	Status             *TypedID
	PreviousCredential string
	Proof              *docproof.Proof
}

type rawCredential struct {
	Context            interface{}            `json:"@context,omitempty"`
	ID                 string                 `json:"id,omitempty"`
	Type               interface{}            `json:"type,omitempty"`
	Subject            map[string]interface{} `json:"credentialSubject,omitempty"`
	Issuer             string                 `json:"issuer,omitempty"`
	Issued             string                 `json:"issuanceDate,omitempty"`
	Expired            string                 `json:"expirationDate,omitempty"`
	Status             *TypedID               `json:"credentialStatus,omitempty"`
	PreviousCredential string                 `json:"previousCredential,omitempty"`
	Proof              json.RawMessage        `json:"proof,omitempty"`
}

// ParseCredential parses and validates a credential from its JSON form. The
// returned credential carries the parsed proof when one is present; a credential
// with more than one proof is rejected.
func ParseCredential(vcBytes []byte) (*Credential, error) {
	if err := validateCredentialJSON(vcBytes); err != nil {
		return nil, err
	}

	raw := &rawCredential{}
	if err := json.Unmarshal(vcBytes, raw); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}

	return newCredential(raw)
}

func validateCredentialJSON(vcBytes []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(vcBytes))
	if err != nil {
		return fmt.Errorf("credential schema validation: %w", err)
	}

	if !result.Valid() {
		return errors.New(describeSchemaValidationError(result, "credential"))
	}

	return nil
}

func describeSchemaValidationError(result *gojsonschema.Result, what string) string {
	errMsg := what + " is not valid:\n"
	for _, desc := range result.Errors() {
		errMsg += fmt.Sprintf("- %s\n", desc)
	}

	return errMsg
}

func newCredential(raw *rawCredential) (*Credential, error) {
	types, err := decodeType(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("fill credential types from raw: %w", err)
	}

	context, err := decodeContext(raw.Context)
	if err != nil {
		return nil, fmt.Errorf("fill credential context from raw: %w", err)
	}

	vc := &Credential{
		Context:            context,
		ID:                 raw.ID,
		Types:              types,
		Issuer:             raw.Issuer,
		Subject:            raw.Subject,
		Status:             raw.Status,
		PreviousCredential: raw.PreviousCredential,
	}

	vc.Issued, err = decodeTime(raw.Issued)
	if err != nil {
		return nil, fmt.Errorf("fill credential issued from raw: %w", err)
	}

	vc.Expired, err = decodeTime(raw.Expired)
	if err != nil {
		return nil, fmt.Errorf("fill credential expired from raw: %w", err)
	}

	if len(raw.Proof) > 0 {
		vc.Proof, err = decodeProof(raw.Proof)
		if err != nil {
			return nil, err
		}
	}

	return vc, nil
}

func decodeType(t interface{}) ([]string, error) {
	switch rType := t.(type) {
	case string:
		return []string{rType}, nil
	case []interface{}:
		types := make([]string, len(rType))

		for i, e := range rType {
			eStr, ok := e.(string)
			if !ok {
				return nil, errors.New("vc types: array element is not a string")
			}

			types[i] = eStr
		}

		return types, nil
	default:
		return nil, errors.New("credential type of unknown structure")
	}
}

func decodeContext(c interface{}) ([]string, error) {
	switch rContext := c.(type) {
	case string:
		return []string{rContext}, nil
	case []interface{}:
		context := make([]string, len(rContext))

		for i, e := range rContext {
			eStr, ok := e.(string)
			if !ok {
				return nil, errors.New("vc context: array element is not a string")
			}

			context[i] = eStr
		}

		return context, nil
	default:
		return nil, errors.New("credential context of unknown structure")
	}
}

func decodeTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func decodeProof(rawProof json.RawMessage) (*docproof.Proof, error) {
	var proofMaps []map[string]interface{}

	var single map[string]interface{}

	if err := json.Unmarshal(rawProof, &single); err == nil {
		proofMaps = append(proofMaps, single)
	} else if err := json.Unmarshal(rawProof, &proofMaps); err != nil {
		return nil, fmt.Errorf("unmarshal credential proof: %w", err)
	}

	if len(proofMaps) != 1 {
		return nil, errors.New("credential must carry exactly one proof")
	}

	return docproof.NewProof(proofMaps[0])
}

// MarshalJSON converts the credential to JSON bytes.
func (vc *Credential) MarshalJSON() ([]byte, error) {
	return json.Marshal(vc.raw())
}

func (vc *Credential) raw() *rawCredential {
	raw := &rawCredential{
		Context:            contextToRaw(vc.Context),
		ID:                 vc.ID,
		Type:               typesToRaw(vc.Types),
		Subject:            vc.Subject,
		Issuer:             vc.Issuer,
		Status:             vc.Status,
		PreviousCredential: vc.PreviousCredential,
	}

	if vc.Issued != nil {
		raw.Issued = vc.Issued.UTC().Format(time.RFC3339)
	}

	if vc.Expired != nil {
		raw.Expired = vc.Expired.UTC().Format(time.RFC3339)
	}

	if vc.Proof != nil {
		proofBytes, err := json.Marshal(vc.Proof.JSONLdObject())
		if err == nil {
			raw.Proof = proofBytes
		}
	}

	return raw
}

func contextToRaw(context []string) interface{} {
	if len(context) == 1 {
		return context[0]
	}

	return context
}

func typesToRaw(types []string) interface{} {
	if len(types) == 1 {
		return types[0]
	}

	return types
}

// ToMap returns the credential as a generic JSON object, the form the
// canonicalization step of the proof pipeline operates on.
func (vc *Credential) ToMap() (map[string]interface{}, error) {
	vcBytes, err := json.Marshal(vc)
	if err != nil {
		return nil, err
	}

	var vcMap map[string]interface{}

	if err := json.Unmarshal(vcBytes, &vcMap); err != nil {
		return nil, err
	}

	return vcMap, nil
}

// validateDraft checks the structural preconditions for issuance.
func (vc *Credential) validateDraft() error {
	if vc.Proof != nil {
		return errors.New("credential already carries a proof")
	}

	if vc.Issuer == "" {
		return errors.New("credential issuer is not set")
	}

	if vc.Issued == nil {
		return errors.New("credential issuance date is not set")
	}

	if len(vc.Context) == 0 || vc.Context[0] != ldcontext.CredentialsContextURI {
		return fmt.Errorf("credential context must start with %s", ldcontext.CredentialsContextURI)
	}

	if len(vc.Types) == 0 || vc.Types[0] != VerifiableCredentialType {
		return fmt.Errorf("credential type must include %s", VerifiableCredentialType)
	}

	return nil
}
