package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazyhaar/orgwatch/internal/snapshot"
)

// File persists snapshots as indented JSON documents in one directory,
// one <key>.json file per pair. Writes land in a temp sibling first and
// are renamed into place, so a failed or interrupted write never
// corrupts the previous document.
type File struct {
	dir string
}

// NewFile creates the directory if needed and returns the store.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Load reads the document for the pair. A missing file means the pair
// was never saved. A document that no longer parses is returned as an
// error; the caller decides whether to rebuild the baseline.
func (f *File) Load(_ context.Context, provider snapshot.Provider, org string) (*snapshot.Snapshot, error) {
	key := Key(provider, org)
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	snap := &snapshot.Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", key, err)
	}
	snap.Provider = provider
	snap.Org = org
	return snap, nil
}

// Save replaces the document for the snapshot's pair.
func (f *File) Save(_ context.Context, snap *snapshot.Snapshot) error {
	key := Key(snap.Provider, snap.Org)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}

	target := f.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write tmp: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
