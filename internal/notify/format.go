package notify

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/orgwatch/internal/snapshot"
)

// Format renders a change set as the markdown message body. Sections
// appear in fixed order, only when non-empty; an empty set renders as
// an empty string and callers skip delivery.
func Format(cs snapshot.ChangeSet) string {
	var sections []string
	if len(cs.NewRepos) > 0 {
		sections = append(sections, section("## 🆕 New GitHub Repositories", cs.NewRepos, true, false))
	}
	if len(cs.UpdatedRepos) > 0 {
		sections = append(sections, section("## 📝 GitHub Repository Updates", cs.UpdatedRepos, true, true))
	}
	if len(cs.NewModels) > 0 {
		sections = append(sections, section("## 🤗 New HuggingFace Models", cs.NewModels, false, false))
	}
	if len(cs.UpdatedModels) > 0 {
		sections = append(sections, section("## 🔄 HuggingFace Model Updates", cs.UpdatedModels, false, false))
	}
	if len(cs.NewDatasets) > 0 {
		sections = append(sections, section("## 🗂️ New HuggingFace Datasets", cs.NewDatasets, false, false))
	}
	if len(cs.UpdatedDatasets) > 0 {
		sections = append(sections, section("## 🔄 HuggingFace Dataset Updates", cs.UpdatedDatasets, false, false))
	}
	return strings.Join(sections, "\n")
}

// section renders one header plus its entry lines. Repo lines carry an
// [org] prefix; hub identifiers already embed the org, so theirs skip
// it. Updated repos get a commit sub-line.
func section(header string, entries []snapshot.Summary, withOrg, withCommit bool) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, e := range entries {
		if withOrg && e.Org != "" {
			fmt.Fprintf(&b, "- [%s] [%s](%s)\n", e.Org, e.Name, e.URL)
		} else {
			fmt.Fprintf(&b, "- [%s](%s)\n", e.Name, e.URL)
		}
		if withCommit && e.Commit != nil {
			fmt.Fprintf(&b, "  `%s` %s *by %s*\n", e.Commit.SHA, e.Commit.Message, e.Commit.Author)
		}
	}
	return b.String()
}
