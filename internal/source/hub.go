package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hazyhaar/orgwatch/internal/snapshot"
)

const defaultHubBase = "https://huggingface.co/api"

// Hub watches one organization (author) on a HuggingFace-compatible
// model and dataset hub.
type Hub struct {
	org     string
	base    string
	webBase string
	client  *http.Client
	logger  *slog.Logger
}

// NewHub returns an adapter for the organization. Public item URLs
// derive from the API base by stripping a trailing /api, so overridden
// test bases keep working.
func NewHub(org string, cfg Config) *Hub {
	cfg.defaults()
	base := cfg.BaseURL
	if base == "" {
		base = defaultHubBase
	}
	base = strings.TrimRight(base, "/")
	return &Hub{
		org:     org,
		base:    base,
		webBase: strings.TrimSuffix(base, "/api"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

func (h *Hub) Provider() snapshot.Provider { return snapshot.ProviderHuggingFace }

func (h *Hub) Org() string { return h.org }

// Fetch lists the organization's models and datasets. Both listings
// are top-level: either failing is a hard failure, so a transient API
// error can never persist an empty section and flood "new" entries on
// the next good cycle.
func (h *Hub) Fetch(ctx context.Context) (*snapshot.Snapshot, error) {
	snap := snapshot.New(snapshot.ProviderHuggingFace, h.org)

	models, err := h.list(ctx, "models")
	if err != nil {
		return nil, fmt.Errorf("hub: list models for %s: %w", h.org, err)
	}
	snap.Models = make(snapshot.HubSet, 0, len(models))
	for _, m := range models {
		id := m.id()
		if id == "" {
			continue
		}
		snap.Models = append(snap.Models, snapshot.HubItem{
			ID:           id,
			URL:          h.webBase + "/" + id,
			LastModified: m.LastModified,
		})
	}

	datasets, err := h.list(ctx, "datasets")
	if err != nil {
		return nil, fmt.Errorf("hub: list datasets for %s: %w", h.org, err)
	}
	snap.Datasets = make(snapshot.HubSet, 0, len(datasets))
	for _, d := range datasets {
		id := d.id()
		if id == "" {
			continue
		}
		snap.Datasets = append(snap.Datasets, snapshot.HubItem{
			ID:           id,
			URL:          h.webBase + "/datasets/" + id,
			LastModified: d.LastModified,
		})
	}
	return snap, nil
}

type hubListing struct {
	ID           string `json:"id"`
	ModelID      string `json:"modelId"`
	LastModified string `json:"lastModified"`
}

// id prefers the canonical id and falls back to the legacy modelId
// field some hub responses still carry.
func (l hubListing) id() string {
	if l.ID != "" {
		return l.ID
	}
	return l.ModelID
}

func (h *Hub) list(ctx context.Context, kind string) ([]hubListing, error) {
	u := fmt.Sprintf("%s/%s?author=%s&limit=500", h.base, kind, url.QueryEscape(h.org))
	body, err := getJSON(ctx, h.client, u, nil)
	if err != nil {
		return nil, err
	}
	var items []hubListing
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse %s listing: %w", kind, err)
	}
	return items, nil
}
