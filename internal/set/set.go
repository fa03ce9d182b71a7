// Package set implements a simple string set with deterministic, sorted
// enumeration, used wherever the evaluator needs deduplication or visited
// tracking with an ascending tie-break (nettracer's BFS visited set,
// faultevaluator's net/sink/mux-key dedup ahead of Sort).
package set

import "sort"

type Set map[string]struct{}

func New(elements ...string) Set {
	s := make(Set)
	for _, e := range elements {
		s.Add(e)
	}
	return s
}

func (set Set) Add(str string) {
	set[str] = struct{}{}
}

func (set Set) Has(str string) bool {
	_, ok := set[str]
	return ok
}

func (set Set) List() (elements []string) {
	for element := range set {
		elements = append(elements, element)
	}
	return
}

// Sort returns the set's elements in ascending order, the tie-break order
// required of net and cell names throughout the evaluator.
func (set Set) Sort() (elements []string) {
	elements = set.List()
	sort.Strings(elements)
	return
}
