// Package pagination computes the page links shown under a result list.
package pagination

// Item is one entry of a page bar: a page number or an ellipsis
type Item struct {
	Page     int
	Ellipsis bool
}

// TotalPages returns the number of pages needed for count records
func TotalPages(count, limit int) int {
	if count <= 0 || limit <= 0 {
		return 0
	}
	return (count + limit - 1) / limit
}

// VisiblePages returns the page bar for current out of total pages. Only the
// first and last pages and current with its neighbours are shown; an ellipsis
// stands wherever two shown pages do not abut.
func VisiblePages(current, total int) []Item {
	if total <= 0 {
		return []Item{}
	}
	current = min(max(current, 1), total)

	pages := []int{1}
	for p := max(2, current-1); p <= min(total-1, current+1); p++ {
		pages = append(pages, p)
	}
	if total > 1 {
		pages = append(pages, total)
	}

	items := make([]Item, 0, len(pages)+2)
	prev := 0
	for _, p := range pages {
		if prev > 0 && p-prev > 1 {
			items = append(items, Item{Ellipsis: true})
		}
		items = append(items, Item{Page: p})
		prev = p
	}
	return items
}
