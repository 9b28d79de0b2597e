// Package testutil provides test helpers for setting up temporary stores,
// creating fixtures, and making assertions.
package testutil

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"pocketledger/internal/database"
	"pocketledger/internal/logger"
	"pocketledger/internal/models"
)

// SetupTestStore opens a store backed by a file in a fresh temp directory.
// Logs go to the test output and password hashing uses the minimum cost.
func SetupTestStore(t *testing.T) *database.Store {
	t.Helper()
	return OpenTestStore(t, TempDataPath(t))
}

// OpenTestStore opens (or reopens) a store at path with test logging.
func OpenTestStore(t *testing.T, path string) *database.Store {
	t.Helper()

	restore := logger.Replace(zaptest.NewLogger(t).Sugar())
	t.Cleanup(restore)

	prevCost := models.PasswordCost
	models.PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { models.PasswordCost = prevCost })

	store, err := database.Open(&database.Config{Path: path})
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	return store
}

// TempDataPath returns a not-yet-existing data file path inside t.TempDir().
func TempDataPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ledger.json")
}
