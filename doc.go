/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package trustkit provides a decentralized-identity trust layer: key
// management with pluggable backends, DID resolution through method plugins,
// linked-data credential proofs, and a trust registry with bounded path
// discovery.
//
// The implementation packages live under pkg/; the plugin contracts shared
// with external backends live under spi/.
package trustkit
