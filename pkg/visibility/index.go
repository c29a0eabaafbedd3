package visibility

import "sort"

// Index maps field names to the positions of the rules that depend on them.
// Rules without declared dependencies are treated as depending on every
// field, since nothing tells the engine when they could change.
type Index struct {
	byField map[string][]int
	always  []int
	size    int
}

// NewIndex builds an index over rules.
func NewIndex(rules []Rule) Index {
	idx := Index{byField: make(map[string][]int), size: len(rules)}
	for pos, rule := range rules {
		if len(rule.Dependencies) == 0 {
			idx.always = append(idx.always, pos)
			continue
		}
		seen := make(map[string]struct{}, len(rule.Dependencies))
		for _, dep := range rule.Dependencies {
			if _, dup := seen[dep]; dup {
				continue
			}
			seen[dep] = struct{}{}
			idx.byField[dep] = append(idx.byField[dep], pos)
		}
	}
	return idx
}

// Affected returns the sorted positions of rules to re-run after field
// changes.
func (idx Index) Affected(field string) []int {
	direct := idx.byField[field]
	if len(direct) == 0 && len(idx.always) == 0 {
		return nil
	}
	out := make([]int, 0, len(direct)+len(idx.always))
	out = append(out, direct...)
	out = append(out, idx.always...)
	sort.Ints(out)
	return out
}

// Len reports how many rules the index covers.
func (idx Index) Len() int {
	return idx.size
}
