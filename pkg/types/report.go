package types

import "sort"

// Report is the outcome of one reconciliation run: every declared or
// derived path mapped to whether it needed to change, plus the overall
// flags callers branch on.
type Report struct {
	// Paths maps each managed path to its must-change flag as
	// computed during detection, before any commit ran.
	Paths map[string]bool `json:"paths"`

	// Changed reports whether any path needed to change. In check
	// mode it still reflects pending changes even though nothing was
	// mutated.
	Changed bool `json:"changed"`

	// WouldChange is set when the run was a dry run and changes were
	// pending but withheld.
	WouldChange bool `json:"would_change,omitempty"`
}

// SortedPaths returns the managed paths in lexical order, for
// deterministic rendering.
func (r *Report) SortedPaths() []string {
	paths := make([]string, 0, len(r.Paths))
	for p := range r.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
