// Package testutil provides shared test helpers for setting up vaults.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/storage"
)

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestService creates a note service backed by a temporary vault.
func TestService(t *testing.T) (*noteservice.Service, storage.Provider, string) {
	t.Helper()
	vaultDir, store := TestVault(t)
	svc := noteservice.NewService(store, slog.Default())
	return svc, store, vaultDir
}
