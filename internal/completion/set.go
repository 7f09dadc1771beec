package completion

import "sort"

// CompletionSet is the final answer of a request: each kind maps to its
// candidates, sorted and without duplicates. Kinds without candidates are
// left out.
type CompletionSet map[string][]string

func newCompletionSet(acc map[string]Candidates) CompletionSet {
	set := make(CompletionSet, len(acc))
	for kind, candidates := range acc {
		if len(candidates) == 0 {
			continue
		}
		set[kind] = candidates.Sorted()
	}
	return set
}

// Kinds returns the kinds in lexicographic order
func (s CompletionSet) Kinds() []string {
	kinds := make([]string, 0, len(s))
	for kind := range s {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Len returns the number of candidates across every kind
func (s CompletionSet) Len() int {
	n := 0
	for _, values := range s {
		n += len(values)
	}
	return n
}

// Flatten returns every candidate of every kind, sorted and deduplicated.
// Frontends without a notion of kind use this.
func (s CompletionSet) Flatten() []string {
	all := make(Candidates, s.Len())
	for _, values := range s {
		all.Add(values...)
	}
	return all.Sorted()
}
