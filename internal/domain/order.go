package domain

import "sort"

// SortPathways orders pathways in place by SortOrder ascending. Pathways
// without a SortOrder come after every ordered one. Ties (and the unordered
// tail) are broken by ascending Created.
func SortPathways(pathways []Pathway) {
	sort.SliceStable(pathways, func(i, j int) bool {
		return pathwayLess(&pathways[i], &pathways[j])
	})
}

func pathwayLess(a, b *Pathway) bool {
	switch {
	case a.HasSortOrder() && !b.HasSortOrder():
		return true
	case !a.HasSortOrder() && b.HasSortOrder():
		return false
	case a.HasSortOrder() && b.HasSortOrder() && *a.SortOrder != *b.SortOrder:
		return *a.SortOrder < *b.SortOrder
	}
	return a.Created < b.Created
}
