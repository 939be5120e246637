package snapshot

// Summary is one artifact line in a change report: identity, canonical
// URL, owning organization, and for repository updates the abbreviated
// head commit.
type Summary struct {
	Name   string  `json:"name"`
	URL    string  `json:"url"`
	Org    string  `json:"org"`
	Commit *Commit `json:"commit,omitempty"`
}

// ChangeSet collects the changes of one pair or, merged, of a whole
// cycle. The JSON names are the merged notification payload contract.
type ChangeSet struct {
	NewRepos        []Summary `json:"github_new_repos"`
	UpdatedRepos    []Summary `json:"github_updated_repos"`
	NewModels       []Summary `json:"huggingface_new_models"`
	UpdatedModels   []Summary `json:"huggingface_updated_models"`
	NewDatasets     []Summary `json:"huggingface_new_datasets"`
	UpdatedDatasets []Summary `json:"huggingface_updated_datasets"`
}

// Merge concatenates change sets section-wise in argument order, which
// the coordinator keeps equal to the configured organization order.
// Identifiers are only unique within one pair, so nothing is
// deduplicated.
func Merge(sets ...ChangeSet) ChangeSet {
	var out ChangeSet
	for _, cs := range sets {
		out.NewRepos = append(out.NewRepos, cs.NewRepos...)
		out.UpdatedRepos = append(out.UpdatedRepos, cs.UpdatedRepos...)
		out.NewModels = append(out.NewModels, cs.NewModels...)
		out.UpdatedModels = append(out.UpdatedModels, cs.UpdatedModels...)
		out.NewDatasets = append(out.NewDatasets, cs.NewDatasets...)
		out.UpdatedDatasets = append(out.UpdatedDatasets, cs.UpdatedDatasets...)
	}
	return out
}

// Empty reports whether no section contains any entry. An empty merged
// set suppresses the cycle's notification.
func (c ChangeSet) Empty() bool {
	return len(c.NewRepos) == 0 && len(c.UpdatedRepos) == 0 &&
		len(c.NewModels) == 0 && len(c.UpdatedModels) == 0 &&
		len(c.NewDatasets) == 0 && len(c.UpdatedDatasets) == 0
}

// Count is the total number of entries across all sections.
func (c ChangeSet) Count() int {
	return len(c.NewRepos) + len(c.UpdatedRepos) +
		len(c.NewModels) + len(c.UpdatedModels) +
		len(c.NewDatasets) + len(c.UpdatedDatasets)
}
