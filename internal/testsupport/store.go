package testsupport

import (
	"context"
	"testing"

	"shoutdesk/internal/config"
	"shoutdesk/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewSubmission inserts a submission row for tests using the provided store.
func NewSubmission(t testing.TB, st *store.Store, filename string) *store.Submission {
	t.Helper()

	sub, err := st.InsertSubmission(context.Background(), filename)
	if err != nil {
		t.Fatalf("store.InsertSubmission: %v", err)
	}
	return sub
}
