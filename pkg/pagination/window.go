package pagination

// Window returns the inclusive range of page numbers to expose around page.
// page is clamped into [1, totalPages] first.
func Window(page, totalPages, windowSize int) (start, end int) {
	if totalPages < 1 {
		totalPages = 1
	}
	if windowSize < 1 {
		windowSize = 1
	}
	page = Clamp(page, totalPages)

	start = max(1, page-windowSize/2)
	end = min(totalPages, start+windowSize-1)
	if end == totalPages {
		start = max(1, end-windowSize+1)
	}
	return start, end
}

// Pages expands Window into the page numbers themselves.
func Pages(page, totalPages, windowSize int) []int {
	start, end := Window(page, totalPages, windowSize)
	out := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	return out
}

// Clamp bounds n to [1, totalPages].
func Clamp(n, totalPages int) int {
	if n < 1 {
		return 1
	}
	if totalPages >= 1 && n > totalPages {
		return totalPages
	}
	return n
}
