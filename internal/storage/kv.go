// Package storage mirrors the catalog, cart and order stores into a durable
// key-value slot and restores them on startup.
package storage

import (
	"context"
	"fmt"
)

// KV is a durable key-value slot store
type KV interface {
	// Get returns the stored value. ok is false when the key was never written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a KV backend
type Options struct {
	Backend     string
	DataDir     string
	RedisAddr   string
	RedisPrefix string
}

// Open builds the KV backend named in opts. The returned close func releases
// any connection the backend holds.
func Open(opts Options) (KV, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case BackendMemory:
		return NewMemoryKV(), noop, nil
	case BackendSQLite, "":
		kv, err := OpenSQLite(opts.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case BackendRedis:
		kv := DialRedis(opts.RedisAddr, opts.RedisPrefix)
		return kv, kv.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
