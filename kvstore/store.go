// Package kvstore provides the durable key-value storage a client session is
// persisted to between page reloads and process restarts.
package kvstore

import "context"

// Store is a flat byte-valued key-value store.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes every key in one operation. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

type prefixed struct {
	inner  Store
	prefix string
}

// WithPrefix namespaces every key of inner under prefix.
func WithPrefix(inner Store, prefix string) Store {
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = p.prefix + k
	}
	return p.inner.Delete(ctx, full...)
}
