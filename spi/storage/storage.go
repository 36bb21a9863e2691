/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package storage defines the storage contracts required by the framework. A Provider
// opens named stores; a Store is a flat key-value namespace. Implementations must be
// safe for concurrent use.
package storage

import "errors"

var (
	// ErrStoreNotFound is returned when a store is not found.
	ErrStoreNotFound = errors.New("store not found")

	// ErrDataNotFound is returned when data is not found.
	ErrDataNotFound = errors.New("data not found")
)

// Provider represents a storage provider.
type Provider interface {
	// OpenStore opens a store with the given name and returns a handle.
	// If the store has never been opened before, then it is created.
	// Store names are not case-sensitive.
	OpenStore(name string) (Store, error)

	// Close closes all stores created under this store provider.
	Close() error
}

// Store represents a storage database.
type Store interface {
	// Put stores the value under the given key. An empty key is not allowed.
	Put(key string, value []byte) error

	// Get retrieves the value stored under the given key. If no value is found,
	// the returned error wraps ErrDataNotFound.
	Get(key string) ([]byte, error)

	// Keys returns all keys currently stored, in unspecified order.
	Keys() ([]string, error)

	// Delete removes the value stored under the given key. Deleting a key that does
	// not exist is not an error.
	Delete(key string) error
}
