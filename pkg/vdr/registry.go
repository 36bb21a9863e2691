/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vdr provides the DID method registry. Methods are plugins registered
// once at wiring time; resolution dispatches on the parsed method name and always
// yields a status-tagged Resolution, never a nil document behind a nil error.
package vdr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bluele/gcache"

	diddoc "github.com/trustfabric/trustkit-go/pkg/doc/did"
	spivdr "github.com/trustfabric/trustkit-go/spi/vdr"
)

// ErrMethodAlreadyRegistered is returned when a second plugin is registered for
// a method name. One plugin per method name, registered at startup.
var ErrMethodAlreadyRegistered = errors.New("did method already registered")

// Method is a DID method plugin.
type Method interface {
	// Accept reports whether this plugin serves the given method name.
	Accept(method string) bool

	// Read resolves an identifier. Domain outcomes (not found, deactivated,
	// transient faults) are statuses on the returned Resolution; an error means
	// the plugin itself misbehaved.
	Read(ctx context.Context, didID string, opts ...spivdr.DIDMethodOption) (*diddoc.Resolution, error)

	// Create mints a new identifier and its document per the creation options.
	Create(ctx context.Context, options *spivdr.CreationOptions,
		opts ...spivdr.DIDMethodOption) (*diddoc.Resolution, error)

	// Close frees any resources held by the plugin.
	Close() error
}

// Option is a registry option.
type Option func(opts *Registry)

// WithCache enables a TTL cache for successfully resolved documents. Only
// success outcomes are cached; a NotFound or Transient outcome is always
// re-resolved.
func WithCache(size int, ttl time.Duration) Option {
	return func(r *Registry) {
		r.cache = gcache.New(size).ARC().Expiration(ttl).Build()
	}
}

// Registry is the DID method registry.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]Method
	cache   gcache.Cache
}

// New returns a new method registry.
func New(opts ...Option) *Registry {
	r := &Registry{methods: make(map[string]Method)}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a method plugin under its method name. Registering a second
// plugin for the same name is a conflict, not a silent override.
func (r *Registry) Register(name string, method Method) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.methods[name]; ok {
		return fmt.Errorf("method %q: %w", name, ErrMethodAlreadyRegistered)
	}

	r.methods[name] = method

	return nil
}

// Resolve parses the identifier and dispatches to the registered plugin. A
// malformed identifier is the only error outcome; everything else, including an
// unregistered method, is a status on the Resolution.
func (r *Registry) Resolve(ctx context.Context, didID string,
	opts ...spivdr.DIDMethodOption) (*diddoc.Resolution, error) {
	parsed, err := diddoc.Parse(didID)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", didID, err)
	}

	if r.cache != nil {
		if cached, cacheErr := r.cache.Get(didID); cacheErr == nil {
			return cached.(*diddoc.Resolution), nil
		}
	}

	method := r.methodFor(parsed.Method)
	if method == nil {
		return diddoc.NewMethodNotSupported(parsed.Method), nil
	}

	resolution, err := method.Read(ctx, didID, opts...)
	if err != nil {
		return nil, fmt.Errorf("did method read failed: %w", err)
	}

	if r.cache != nil && resolution.Resolved() {
		// cache set failures only mean a cold cache on the next call
		_ = r.cache.Set(didID, resolution)
	}

	return resolution, nil
}

// Create mints a new identifier with the named method.
func (r *Registry) Create(ctx context.Context, methodName string, options *spivdr.CreationOptions,
	opts ...spivdr.DIDMethodOption) (*diddoc.Resolution, error) {
	method := r.methodFor(methodName)
	if method == nil {
		return diddoc.NewMethodNotSupported(methodName), nil
	}

	if options == nil {
		options = spivdr.NewCreationOptions()
	}

	return method.Create(ctx, options, opts...)
}

// Close frees all registered plugins.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, method := range r.methods {
		if err := method.Close(); err != nil {
			return fmt.Errorf("close method %q: %w", name, err)
		}
	}

	return nil
}

func (r *Registry) methodFor(name string) Method {
	r.mu.RLock()
	defer r.mu.RUnlock()

	method, ok := r.methods[name]
	if !ok || !method.Accept(name) {
		return nil
	}

	return method
}
