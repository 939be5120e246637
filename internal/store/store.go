// Package store persists the last-known snapshot of each
// (provider, organization) pair. Two backends exist: flat JSON files
// and a single-table SQLite database. Both hold exactly one snapshot
// per key and replace it wholesale on save; no history is kept.
package store

import (
	"context"
	"strings"

	"github.com/hazyhaar/orgwatch/internal/snapshot"
)

// Store is the snapshot persistence contract. Load returns (nil, nil)
// for a pair that was never saved; absence is not an error.
type Store interface {
	Load(ctx context.Context, provider snapshot.Provider, org string) (*snapshot.Snapshot, error)
	Save(ctx context.Context, snap *snapshot.Snapshot) error
	Close() error
}

// Key derives the storage key for a pair. Slashes in organization
// names (hub namespaces) flatten to underscores so keys stay usable as
// file names.
func Key(provider snapshot.Provider, org string) string {
	return string(provider) + "_" + strings.ReplaceAll(org, "/", "_")
}
