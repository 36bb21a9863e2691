/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mem provides an in-memory implementation of the spi/storage contracts.
package mem

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	spi "github.com/trustfabric/trustkit-go/spi/storage"
)

var errEmptyKey = errors.New("key cannot be empty")

// Provider represents an in-memory implementation of the spi.Provider interface.
type Provider struct {
	dbs  map[string]*memStore
	lock sync.RWMutex
}

// NewProvider instantiates a new in-memory storage Provider.
func NewProvider() *Provider {
	return &Provider{dbs: make(map[string]*memStore)}
}

// OpenStore opens a store with the given name and returns a handle.
// If the store has never been opened before, then it is created.
func (p *Provider) OpenStore(name string) (spi.Store, error) {
	if name == "" {
		return nil, fmt.Errorf("store name cannot be empty")
	}

	storeName := strings.ToLower(name)

	p.lock.Lock()
	defer p.lock.Unlock()

	store := p.dbs[storeName]
	if store == nil {
		store = &memStore{db: make(map[string][]byte)}
		p.dbs[storeName] = store
	}

	return store, nil
}

// Close closes all stores created under this store provider.
func (p *Provider) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.dbs = make(map[string]*memStore)

	return nil
}

type memStore struct {
	db   map[string][]byte
	lock sync.RWMutex
}

// Put stores the value under the given key.
func (s *memStore) Put(key string, value []byte) error {
	if key == "" {
		return errEmptyKey
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.lock.Lock()
	defer s.lock.Unlock()

	s.db[key] = stored

	return nil
}

// Get retrieves the value stored under the given key.
func (s *memStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, errEmptyKey
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	value, ok := s.db[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", spi.ErrDataNotFound, key)
	}

	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

// Keys returns all keys currently stored.
func (s *memStore) Keys() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	keys := make([]string, 0, len(s.db))
	for k := range s.db {
		keys = append(keys, k)
	}

	return keys, nil
}

// Delete removes the value stored under the given key.
func (s *memStore) Delete(key string) error {
	if key == "" {
		return errEmptyKey
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.db, key)

	return nil
}
