package snapshot

// Diff compares the current snapshot of a (provider, organization) pair
// against the previously persisted one and reports what is new or
// updated. The function is pure: no clocks, no I/O, no mutation of
// either snapshot.
//
// Rules:
//   - prev absent or holding no records: first observation for the
//     pair, nothing is reported (the baseline is established silently).
//   - identifier only in cur: new, regardless of fingerprint state.
//   - identifier in both: updated only when both fingerprints were
//     observed and differ. An absent fingerprint never yields an update.
//   - identifier only in prev: ignored. Deletions are not reported.
//
// Report order follows cur's listing order; nothing is sorted.
func Diff(prev, cur *Snapshot) ChangeSet {
	var cs ChangeSet
	if cur == nil || prev.Count() == 0 {
		return cs
	}
	cs.NewRepos, cs.UpdatedRepos = diffRepos(cur.Org, prev.Repos, cur.Repos)
	cs.NewModels, cs.UpdatedModels = diffHub(cur.Org, prev.Models, cur.Models)
	cs.NewDatasets, cs.UpdatedDatasets = diffHub(cur.Org, prev.Datasets, cur.Datasets)
	return cs
}

func diffRepos(org string, prev, cur RepoSet) (added, updated []Summary) {
	known := prev.index()
	for _, r := range cur {
		old, seen := known[r.Name]
		if !seen {
			added = append(added, Summary{Name: r.Name, URL: r.URL, Org: org})
			continue
		}
		oldFP, oldOK := old.Fingerprint()
		newFP, newOK := r.Fingerprint()
		if oldOK && newOK && oldFP != newFP {
			updated = append(updated, Summary{
				Name:   r.Name,
				URL:    r.URL,
				Org:    org,
				Commit: displayCommit(r.LastCommit),
			})
		}
	}
	return added, updated
}

func diffHub(org string, prev, cur HubSet) (added, updated []Summary) {
	known := prev.index()
	for _, h := range cur {
		old, seen := known[h.ID]
		if !seen {
			added = append(added, Summary{Name: h.ID, URL: h.URL, Org: org})
			continue
		}
		oldFP, oldOK := old.Fingerprint()
		newFP, newOK := h.Fingerprint()
		if oldOK && newOK && oldFP != newFP {
			updated = append(updated, Summary{Name: h.ID, URL: h.URL, Org: org})
		}
	}
	return added, updated
}

// displayCommit abbreviates a commit for reporting: short SHA plus
// placeholder text for missing metadata. Only called for updated repos,
// whose fingerprint check guarantees a non-nil commit.
func displayCommit(c *Commit) *Commit {
	out := &Commit{SHA: shortSHA(c.SHA), Message: c.Message, Author: c.Author, Date: c.Date}
	if out.Message == "" {
		out.Message = "No message"
	}
	if out.Author == "" {
		out.Author = "Unknown"
	}
	return out
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
