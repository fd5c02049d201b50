package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// monthly returns n monthly maps starting January 2001.
func monthly(id string, n int) ir.Dataset {
	return testutil.Series(id, testutil.Date(2001, 1, 1), "1 month", n)
}
