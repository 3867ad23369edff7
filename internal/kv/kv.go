// Package kv persists small named blobs locally: the login flag, the file
// registry and the navigation history.
package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nhle/siteledger/internal/logger"
	"github.com/nhle/siteledger/internal/model"
)

// Well-known keys.
const (
	KeyAuth        = "nc_auth"
	KeyStoredFiles = "app_stored_files"
	KeyNavHistory  = "nav_history"
)

// Store is a string-keyed blob store.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend selected by cfg.Driver.
func Open(cfg model.KVConfig, log *logger.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "badger":
		bc := DefaultBadgerConfig()
		bc.Path = cfg.Path
		bc.Logger = log
		return OpenBadger(bc)
	default:
		return nil, fmt.Errorf("unknown kv driver %q", cfg.Driver)
	}
}

// GetJSON decodes the value at key into v. It reports false when the key
// is absent, leaving v untouched.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
