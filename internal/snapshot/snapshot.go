// Package snapshot holds the point-in-time view of an organization's
// published artifacts and the pure change-detection logic between two
// such views.
//
// A snapshot never records deletions: an identifier missing from the
// current view means "not observed this cycle", and the diff ignores it.
package snapshot

import "time"

// Provider identifies an upstream registry. The string value doubles as
// the store key prefix, so the constants are wire contract.
type Provider string

const (
	ProviderGitHub      Provider = "github"
	ProviderHuggingFace Provider = "huggingface"
)

// Commit is the head commit observed on a repository branch. Message
// holds only the first line of the commit message.
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// Repo is one code-host repository observation. Its change fingerprint
// is the head commit SHA.
type Repo struct {
	Name          string
	ID            int64
	URL           string
	DefaultBranch string
	LastCommit    *Commit
}

// Fingerprint returns the commit SHA marking the repository's state,
// or ok=false when no commit could be observed this cycle.
func (r Repo) Fingerprint() (string, bool) {
	if r.LastCommit == nil || r.LastCommit.SHA == "" {
		return "", false
	}
	return r.LastCommit.SHA, true
}

// HubItem is one hub observation; models and datasets share the shape.
// Its change fingerprint is the LastModified string, which is opaque:
// compared for inequality, never parsed or ordered.
type HubItem struct {
	ID           string
	URL          string
	LastModified string
}

// Fingerprint returns the last-modified marker, or ok=false when the
// hub did not report one.
func (h HubItem) Fingerprint() (string, bool) {
	if h.LastModified == "" {
		return "", false
	}
	return h.LastModified, true
}

// RepoSet is an ordered collection of repositories. Order is the
// upstream listing order and drives change-report ordering.
type RepoSet []Repo

func (s RepoSet) index() map[string]Repo {
	m := make(map[string]Repo, len(s))
	for _, r := range s {
		m[r.Name] = r
	}
	return m
}

// HubSet is an ordered collection of hub items.
type HubSet []HubItem

func (s HubSet) index() map[string]HubItem {
	m := make(map[string]HubItem, len(s))
	for _, h := range s {
		m[h.ID] = h
	}
	return m
}

// Snapshot is a point-in-time view of one organization's artifacts on
// one provider. A code-host snapshot fills Repos; a hub snapshot fills
// Models and Datasets. Snapshots are read-only once produced.
type Snapshot struct {
	Provider   Provider
	Org        string
	CapturedAt time.Time

	Repos    RepoSet
	Models   HubSet
	Datasets HubSet
}

// New returns an empty snapshot for the pair, stamped now.
func New(p Provider, org string) *Snapshot {
	return &Snapshot{Provider: p, Org: org, CapturedAt: time.Now().UTC()}
}

// Count is the total number of records across all sections. A count of
// zero marks the snapshot as a first observation for diff purposes.
func (s *Snapshot) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Repos) + len(s.Models) + len(s.Datasets)
}
