package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hazyhaar/orgwatch/internal/snapshot"
)

const defaultGitHubBase = "https://api.github.com"

// GitHub watches one organization on a GitHub-compatible code host.
type GitHub struct {
	org    string
	base   string
	token  string
	client *http.Client
	logger *slog.Logger
}

// NewGitHub returns an adapter for the organization.
func NewGitHub(org string, cfg Config) *GitHub {
	cfg.defaults()
	base := cfg.BaseURL
	if base == "" {
		base = defaultGitHubBase
	}
	return &GitHub{
		org:    org,
		base:   strings.TrimRight(base, "/"),
		token:  cfg.Token,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: cfg.Logger,
	}
}

func (g *GitHub) Provider() snapshot.Provider { return snapshot.ProviderGitHub }

func (g *GitHub) Org() string { return g.org }

// Fetch lists the organization's repositories and resolves each head
// commit. Any listing failure aborts the fetch; commit lookups are
// best-effort and a repo whose lookup fails is kept with an absent
// fingerprint.
func (g *GitHub) Fetch(ctx context.Context) (*snapshot.Snapshot, error) {
	listURL := fmt.Sprintf("%s/orgs/%s/repos?per_page=100&type=all", g.base, url.PathEscape(g.org))
	body, err := getJSON(ctx, g.client, listURL, g.header())
	if err != nil {
		return nil, fmt.Errorf("github: list repos for %s: %w", g.org, err)
	}

	var listing []struct {
		Name          string `json:"name"`
		ID            int64  `json:"id"`
		HTMLURL       string `json:"html_url"`
		DefaultBranch string `json:"default_branch"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("github: parse listing for %s: %w", g.org, err)
	}

	snap := snapshot.New(snapshot.ProviderGitHub, g.org)
	snap.Repos = make(snapshot.RepoSet, 0, len(listing))
	for _, r := range listing {
		if r.Name == "" {
			continue
		}
		branch := r.DefaultBranch
		if branch == "" {
			branch = "main"
		}
		snap.Repos = append(snap.Repos, snapshot.Repo{
			Name:          r.Name,
			ID:            r.ID,
			URL:           r.HTMLURL,
			DefaultBranch: branch,
			LastCommit:    g.headCommit(ctx, r.Name, branch),
		})
	}
	return snap, nil
}

// headCommit resolves the newest commit on branch. A not-found on
// "main" retries once against "master"; every other failure leaves the
// repo without a fingerprint for this cycle.
func (g *GitHub) headCommit(ctx context.Context, repo, branch string) *snapshot.Commit {
	c, err := g.fetchCommit(ctx, repo, branch)
	if err != nil && branch == "main" && isNotFound(err) {
		c, err = g.fetchCommit(ctx, repo, "master")
	}
	if err != nil {
		g.logger.Debug("github: commit lookup failed", "org", g.org, "repo", repo, "branch", branch, "error", err)
		return nil
	}
	return c
}

func (g *GitHub) fetchCommit(ctx context.Context, repo, branch string) (*snapshot.Commit, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/commits/%s",
		g.base, url.PathEscape(g.org), url.PathEscape(repo), url.PathEscape(branch))
	body, err := getJSON(ctx, g.client, u, g.header())
	if err != nil {
		return nil, err
	}
	var doc struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name string `json:"name"`
				Date string `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse commit: %w", err)
	}
	if doc.SHA == "" {
		return nil, errors.New("commit without sha")
	}
	return &snapshot.Commit{
		SHA:     doc.SHA,
		Message: firstLine(doc.Commit.Message),
		Author:  doc.Commit.Author.Name,
		Date:    doc.Commit.Author.Date,
	}, nil
}

func (g *GitHub) header() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/vnd.github+json")
	h.Set("X-GitHub-Api-Version", "2022-11-28")
	if g.token != "" {
		h.Set("Authorization", "Bearer "+g.token)
	}
	return h
}
