package model

// PageResult is one page of pets together with the total number of matching
// pets across all pages, as reported by the server.
type PageResult struct {
	Pets  []Pet `json:"results"`
	Count int   `json:"count"`
}

// PageCount returns the number of pages needed for total records at size
// records per page. It is zero when there is nothing to show.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}

	return (total + size - 1) / size
}

// ClampPage keeps a zero-based page index within [0, max(0, pages-1)].
func ClampPage(page, pages int) int {
	if page >= pages {
		page = pages - 1
	}

	if page < 0 {
		page = 0
	}

	return page
}
