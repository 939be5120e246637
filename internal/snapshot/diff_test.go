package snapshot

import (
	"testing"
)

func ghSnap(org string, repos ...Repo) *Snapshot {
	s := New(ProviderGitHub, org)
	s.Repos = repos
	return s
}

func hfSnap(org string, models, datasets []HubItem) *Snapshot {
	s := New(ProviderHuggingFace, org)
	s.Models = models
	s.Datasets = datasets
	return s
}

func repo(name, sha string) Repo {
	r := Repo{Name: name, ID: 1, URL: "https://github.com/acme/" + name, DefaultBranch: "main"}
	if sha != "" {
		r.LastCommit = &Commit{SHA: sha, Message: "update " + name, Author: "dev", Date: "2024-01-01T00:00:00Z"}
	}
	return r
}

func TestDiffFirstObservation(t *testing.T) {
	// WHAT: A nil or empty previous snapshot yields an empty change set.
	// WHY: First observation establishes the baseline silently; a flood
	// of "new" entries on the first successful fetch would be noise.
	cur := ghSnap("acme", repo("alpha", "aaa1111"), repo("beta", "bbb2222"))

	if cs := Diff(nil, cur); !cs.Empty() {
		t.Fatalf("nil previous: got %d changes, want none", cs.Count())
	}
	if cs := Diff(ghSnap("acme"), cur); !cs.Empty() {
		t.Fatalf("empty previous: got %d changes, want none", cs.Count())
	}
}

func TestDiffNewRepo(t *testing.T) {
	// WHAT: An identifier absent from the previous snapshot is reported new.
	// WHY: New artifacts are the primary signal the watcher exists for.
	prev := ghSnap("acme", repo("alpha", "aaa1111"))
	cur := ghSnap("acme", repo("alpha", "aaa1111"), repo("beta", "bbb2222"))

	cs := Diff(prev, cur)
	if len(cs.NewRepos) != 1 {
		t.Fatalf("new repos = %d, want 1", len(cs.NewRepos))
	}
	got := cs.NewRepos[0]
	if got.Name != "beta" || got.Org != "acme" || got.URL != "https://github.com/acme/beta" {
		t.Errorf("unexpected summary: %+v", got)
	}
	if got.Commit != nil {
		t.Errorf("new repo summary carries commit detail: %+v", got.Commit)
	}
	if len(cs.UpdatedRepos) != 0 {
		t.Errorf("updated repos = %d, want 0", len(cs.UpdatedRepos))
	}
}

func TestDiffNewRepoWithoutCommit(t *testing.T) {
	// WHAT: A new repo is reported even when its commit fetch failed.
	// WHY: Newness is decided by the identifier set alone; fingerprints
	// only gate updates.
	prev := ghSnap("acme", repo("alpha", "aaa1111"))
	cur := ghSnap("acme", repo("alpha", "aaa1111"), repo("beta", ""))

	cs := Diff(prev, cur)
	if len(cs.NewRepos) != 1 || cs.NewRepos[0].Name != "beta" {
		t.Fatalf("new repos = %+v, want beta", cs.NewRepos)
	}
}

func TestDiffUpdatedRepo(t *testing.T) {
	// WHAT: A changed head commit SHA reports the repo as updated, with
	// an abbreviated commit attached.
	// WHY: The SHA is the code-host fingerprint; the summary carries the
	// short SHA and first-line message for the notification.
	prev := ghSnap("acme", repo("alpha", "aaa1111222233334444"))
	cur := ghSnap("acme", Repo{
		Name: "alpha", URL: "https://github.com/acme/alpha", DefaultBranch: "main",
		LastCommit: &Commit{SHA: "ccc5555666677778888", Message: "fix build", Author: "kim", Date: "2024-02-02T00:00:00Z"},
	})

	cs := Diff(prev, cur)
	if len(cs.UpdatedRepos) != 1 {
		t.Fatalf("updated repos = %d, want 1", len(cs.UpdatedRepos))
	}
	got := cs.UpdatedRepos[0]
	if got.Commit == nil {
		t.Fatal("updated repo summary missing commit detail")
	}
	if got.Commit.SHA != "ccc5555" {
		t.Errorf("commit sha = %q, want short form ccc5555", got.Commit.SHA)
	}
	if got.Commit.Message != "fix build" || got.Commit.Author != "kim" {
		t.Errorf("unexpected commit detail: %+v", got.Commit)
	}
	if len(cs.NewRepos) != 0 {
		t.Errorf("new repos = %d, want 0", len(cs.NewRepos))
	}
}

func TestDiffCommitPlaceholders(t *testing.T) {
	// WHAT: Missing commit message and author become placeholder text.
	// WHY: Notification lines stay readable when the upstream omits
	// metadata.
	prev := ghSnap("acme", repo("alpha", "aaa1111"))
	cur := ghSnap("acme", Repo{Name: "alpha", URL: "u", LastCommit: &Commit{SHA: "bbb2222"}})

	cs := Diff(prev, cur)
	if len(cs.UpdatedRepos) != 1 {
		t.Fatalf("updated repos = %d, want 1", len(cs.UpdatedRepos))
	}
	c := cs.UpdatedRepos[0].Commit
	if c.Message != "No message" || c.Author != "Unknown" {
		t.Errorf("placeholders not applied: %+v", c)
	}
}

func TestDiffUnchangedSHA(t *testing.T) {
	// WHAT: Equal SHAs report nothing, even when other fields moved.
	// WHY: The fingerprint is the only change signal; URL or branch
	// drift alone is not a publishable event.
	prev := ghSnap("acme", repo("alpha", "aaa1111"))
	changed := repo("alpha", "aaa1111")
	changed.URL = "https://github.com/acme/alpha-renamed"
	changed.DefaultBranch = "master"
	cur := ghSnap("acme", changed)

	if cs := Diff(prev, cur); !cs.Empty() {
		t.Fatalf("got %d changes, want none", cs.Count())
	}
}

func TestDiffAbsentFingerprint(t *testing.T) {
	// WHAT: Comparisons involving an unobserved fingerprint never yield
	// an update.
	// WHY: A failed detail fetch must not masquerade as a change, in
	// either direction.
	cases := []struct {
		name     string
		old, new string
	}{
		{"absent to present", "", "aaa1111"},
		{"present to absent", "aaa1111", ""},
		{"absent to absent", "", ""},
	}
	for _, tc := range cases {
		prev := ghSnap("acme", repo("alpha", tc.old))
		cur := ghSnap("acme", repo("alpha", tc.new))
		if cs := Diff(prev, cur); !cs.Empty() {
			t.Errorf("%s: got %d changes, want none", tc.name, cs.Count())
		}
	}
}

func TestDiffIgnoresDeletions(t *testing.T) {
	// WHAT: Identifiers present only in the previous snapshot are ignored.
	// WHY: Missing means "not observed", not "deleted"; transient listing
	// gaps must not produce removal noise.
	prev := ghSnap("acme", repo("alpha", "aaa1111"), repo("beta", "bbb2222"))
	cur := ghSnap("acme", repo("alpha", "aaa1111"))

	if cs := Diff(prev, cur); !cs.Empty() {
		t.Fatalf("got %d changes, want none", cs.Count())
	}
}

func TestDiffOrderFollowsListing(t *testing.T) {
	// WHAT: Report order equals the current snapshot's listing order.
	// WHY: The upstream returns newest-first style ordering that the
	// notification should preserve; sorting would scramble it.
	prev := ghSnap("acme", repo("mid", "m1"))
	cur := ghSnap("acme", repo("zeta", ""), repo("mid", "m1"), repo("alpha", ""), repo("bravo", ""))

	cs := Diff(prev, cur)
	want := []string{"zeta", "alpha", "bravo"}
	if len(cs.NewRepos) != len(want) {
		t.Fatalf("new repos = %d, want %d", len(cs.NewRepos), len(want))
	}
	for i, name := range want {
		if cs.NewRepos[i].Name != name {
			t.Errorf("new[%d] = %q, want %q", i, cs.NewRepos[i].Name, name)
		}
	}
}

func TestDiffHubLastModified(t *testing.T) {
	// WHAT: Hub items update on any lastModified inequality, including a
	// value that sorts earlier than the old one.
	// WHY: The marker is opaque; it is never parsed or ordered.
	prev := hfSnap("acme", []HubItem{
		{ID: "acme/model-a", URL: "https://huggingface.co/acme/model-a", LastModified: "2024-06-01T00:00:00.000Z"},
	}, nil)
	cur := hfSnap("acme", []HubItem{
		{ID: "acme/model-a", URL: "https://huggingface.co/acme/model-a", LastModified: "2023-01-01T00:00:00.000Z"},
	}, nil)

	cs := Diff(prev, cur)
	if len(cs.UpdatedModels) != 1 {
		t.Fatalf("updated models = %d, want 1", len(cs.UpdatedModels))
	}
	if cs.UpdatedModels[0].Name != "acme/model-a" {
		t.Errorf("updated model = %q", cs.UpdatedModels[0].Name)
	}
	if cs.UpdatedModels[0].Commit != nil {
		t.Errorf("hub summary carries commit detail: %+v", cs.UpdatedModels[0].Commit)
	}
}

func TestDiffHubAbsentMarker(t *testing.T) {
	// WHAT: Hub items with a missing lastModified on either side never update.
	// WHY: Same absence rule as the code host.
	prev := hfSnap("acme", []HubItem{{ID: "acme/m", LastModified: ""}}, nil)
	cur := hfSnap("acme", []HubItem{{ID: "acme/m", LastModified: "2024-06-01"}}, nil)
	if cs := Diff(prev, cur); !cs.Empty() {
		t.Fatalf("got %d changes, want none", cs.Count())
	}
}

func TestDiffHubSections(t *testing.T) {
	// WHAT: Models and datasets diff independently into their own sections.
	// WHY: The notification separates the two artifact classes.
	prev := hfSnap("acme",
		[]HubItem{{ID: "acme/model-a", LastModified: "t1"}},
		[]HubItem{{ID: "acme/data-a", LastModified: "t1"}},
	)
	cur := hfSnap("acme",
		[]HubItem{{ID: "acme/model-a", LastModified: "t2"}, {ID: "acme/model-b", LastModified: "t1"}},
		[]HubItem{{ID: "acme/data-a", LastModified: "t1"}, {ID: "acme/data-b", LastModified: ""}},
	)

	cs := Diff(prev, cur)
	if len(cs.UpdatedModels) != 1 || cs.UpdatedModels[0].Name != "acme/model-a" {
		t.Errorf("updated models = %+v", cs.UpdatedModels)
	}
	if len(cs.NewModels) != 1 || cs.NewModels[0].Name != "acme/model-b" {
		t.Errorf("new models = %+v", cs.NewModels)
	}
	if len(cs.NewDatasets) != 1 || cs.NewDatasets[0].Name != "acme/data-b" {
		t.Errorf("new datasets = %+v", cs.NewDatasets)
	}
	if len(cs.UpdatedDatasets) != 0 {
		t.Errorf("updated datasets = %+v", cs.UpdatedDatasets)
	}
}

func TestDiffIdempotent(t *testing.T) {
	// WHAT: Diffing a snapshot against an identical one reports nothing.
	// WHY: Quiet cycles must stay quiet.
	a := ghSnap("acme", repo("alpha", "aaa1111"), repo("beta", "bbb2222"))
	b := ghSnap("acme", repo("alpha", "aaa1111"), repo("beta", "bbb2222"))
	if cs := Diff(a, b); !cs.Empty() {
		t.Fatalf("got %d changes, want none", cs.Count())
	}
}
