package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Persisted document shapes. The field names are wire contract shared
// with previously written state files: last_check plus a repos object
// for the code host, or models and datasets objects for the hub. Sets
// serialize as JSON objects keyed by identifier, in listing order.

type repoBody struct {
	ID            int64   `json:"id"`
	URL           string  `json:"url"`
	DefaultBranch string  `json:"default_branch"`
	LastCommit    *Commit `json:"last_commit"`
}

type hubBody struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	LastModified string `json:"last_modified"`
}

// MarshalJSON renders the set as an object keyed by repository name in
// slice order. encoding/json sorts map keys, which would lose the
// listing order, so the object is assembled by hand.
func (s RepoSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		body, err := json.Marshal(repoBody{
			ID:            r.ID,
			URL:           r.URL,
			DefaultBranch: r.DefaultBranch,
			LastCommit:    r.LastCommit,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the set keeping the document's key order.
func (s *RepoSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("snapshot: repos: expected object, got %v", tok)
	}
	out := RepoSet{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)
		var body repoBody
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("snapshot: repo %q: %w", name, err)
		}
		out = append(out, Repo{
			Name:          name,
			ID:            body.ID,
			URL:           body.URL,
			DefaultBranch: body.DefaultBranch,
			LastCommit:    body.LastCommit,
		})
	}
	*s = out
	return nil
}

// MarshalJSON renders the set as an object keyed by item ID in slice
// order.
func (s HubSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, h := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(h.ID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		body, err := json.Marshal(hubBody{ID: h.ID, URL: h.URL, LastModified: h.LastModified})
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the set keeping the document's key order.
func (s *HubSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("snapshot: hub items: expected object, got %v", tok)
	}
	out := HubSet{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		id, _ := keyTok.(string)
		var body hubBody
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("snapshot: hub item %q: %w", id, err)
		}
		out = append(out, HubItem{ID: id, URL: body.URL, LastModified: body.LastModified})
	}
	*s = out
	return nil
}

type githubDoc struct {
	LastCheck time.Time `json:"last_check"`
	Repos     RepoSet   `json:"repos"`
}

type hubDoc struct {
	LastCheck time.Time `json:"last_check"`
	Models    HubSet    `json:"models"`
	Datasets  HubSet    `json:"datasets"`
}

// MarshalJSON emits the provider-specific document shape.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	switch s.Provider {
	case ProviderGitHub:
		return json.Marshal(githubDoc{LastCheck: s.CapturedAt, Repos: s.Repos})
	case ProviderHuggingFace:
		return json.Marshal(hubDoc{LastCheck: s.CapturedAt, Models: s.Models, Datasets: s.Datasets})
	default:
		return nil, fmt.Errorf("snapshot: unknown provider %q", s.Provider)
	}
}

// UnmarshalJSON accepts either provider document shape. Provider and
// Org are not part of the document; the store sets them from the key.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var doc struct {
		LastCheck time.Time `json:"last_check"`
		Repos     RepoSet   `json:"repos"`
		Models    HubSet    `json:"models"`
		Datasets  HubSet    `json:"datasets"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	s.CapturedAt = doc.LastCheck
	s.Repos = doc.Repos
	s.Models = doc.Models
	s.Datasets = doc.Datasets
	return nil
}
