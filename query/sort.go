package query

import "sort"

// ApplySort orders items in place according to the sort rules, applied in
// order of significance. Items whose field cannot be resolved sort last.
func ApplySort[T any](items []T, sorts []Sort) {
	if len(sorts) == 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, rule := range sorts {
			a, aok := fieldValue(rule.Field, items[i])
			b, bok := fieldValue(rule.Field, items[j])
			if !aok || !bok {
				if aok != bok {
					return aok
				}
				continue
			}
			if equalValues(a, b) {
				continue
			}
			less := compareOrdered(OpLt, a, b)
			if rule.Desc {
				return !less
			}
			return less
		}
		return false
	})
}

// ApplyPagination slices the page window out of items. Page is 1-based; a nil
// pagination or non-positive limit returns items unchanged.
func ApplyPagination[T any](items []T, p *Pagination) []T {
	if p == nil || p.Limit <= 0 {
		return items
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * p.Limit
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
