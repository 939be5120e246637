// Package orgwatch watches organizations on GitHub and HuggingFace for new
// and updated artifacts.
//
// Each poll cycle lists every configured organization's repositories, models,
// and datasets, diffs the listings against the persisted snapshots, and sends
// one consolidated notification covering everything that changed. Snapshots
// live in per-organization JSON files or a single SQLite database.
package orgwatch

import (
	"github.com/hazyhaar/orgwatch/internal/notify"
	"github.com/hazyhaar/orgwatch/internal/snapshot"
	"github.com/hazyhaar/orgwatch/internal/source"
	"github.com/hazyhaar/orgwatch/internal/store"
)

// Re-export snapshot types for public API.
type (
	Provider  = snapshot.Provider
	Snapshot  = snapshot.Snapshot
	Repo      = snapshot.Repo
	HubItem   = snapshot.HubItem
	Commit    = snapshot.Commit
	ChangeSet = snapshot.ChangeSet
	Summary   = snapshot.Summary
)

// Re-export collaborator interfaces so callers can inject their own.
type (
	Source   = source.Source
	Store    = store.Store
	Notifier = notify.Notifier
)

const (
	ProviderGitHub      = snapshot.ProviderGitHub
	ProviderHuggingFace = snapshot.ProviderHuggingFace
)
