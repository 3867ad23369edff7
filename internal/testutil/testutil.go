// Package testutil provides constructors shared by package tests.
package testutil

import (
	"testing"

	"github.com/nhle/siteledger/internal/kv"
)

// NewTestKV creates an in-memory SQLite kv store with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestKV(t *testing.T) *kv.SQLiteStore {
	t.Helper()

	s, err := kv.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test kv store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test kv store: %v", err)
		}
	})

	return s
}

// NewBadgerKV creates an in-memory Badger kv store closed on cleanup.
func NewBadgerKV(t *testing.T) *kv.BadgerStore {
	t.Helper()

	s, err := kv.OpenBadger(kv.InMemoryBadgerConfig())
	if err != nil {
		t.Fatalf("creating badger kv store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}
