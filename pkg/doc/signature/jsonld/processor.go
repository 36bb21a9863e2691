/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jsonld provides the canonicalization processor used by the proof protocol.
// Canonicalization is deterministic: semantically identical documents produce
// byte-identical output for digesting and signing.
package jsonld

import (
	"fmt"

	"github.com/piprate/json-gold/ld"
)

const (
	format           = "application/n-quads"
	defaultAlgorithm = "URDNA2015"
)

// processorOpts holds options for canonicalization of JSON LD docs.
type processorOpts struct {
	documentLoader ld.DocumentLoader
}

// ProcessorOpts are the options for JSON LD operations on docs.
type ProcessorOpts func(opts *processorOpts)

// WithDocumentLoader option is for passing a custom JSON-LD document loader.
func WithDocumentLoader(loader ld.DocumentLoader) ProcessorOpts {
	return func(opts *processorOpts) {
		opts.documentLoader = loader
	}
}

// Processor is the JSON-LD processor of the framework.
type Processor struct {
	algorithm string
}

// NewProcessor returns a new JSON-LD processor using the given RDF dataset
// normalization algorithm.
func NewProcessor(algorithm string) *Processor {
	if algorithm == "" {
		return Default()
	}

	return &Processor{algorithm}
}

// Default returns a new JSON-LD processor with the default (URDNA2015) algorithm.
func Default() *Processor {
	return &Processor{defaultAlgorithm}
}

// GetCanonicalDocument returns the canonical form of the given JSON-LD document.
func (p *Processor) GetCanonicalDocument(doc map[string]interface{}, opts ...ProcessorOpts) ([]byte, error) {
	procOptions := &processorOpts{}

	for _, opt := range opts {
		opt(procOptions)
	}

	ldOptions := ld.NewJsonLdOptions("")
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.Algorithm = p.algorithm
	ldOptions.Format = format
	ldOptions.ProduceGeneralizedRdf = true

	if procOptions.documentLoader != nil {
		ldOptions.DocumentLoader = procOptions.documentLoader
	}

	proc := ld.NewJsonLdProcessor()

	view, err := proc.Normalize(doc, ldOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize JSON-LD document: %w", err)
	}

	result, ok := view.(string)
	if !ok {
		return nil, fmt.Errorf("normalized view is not a string")
	}

	return []byte(result), nil
}
