package collection

const DefaultViewPageSize = 10

var viewPageSizes = map[int]struct{}{10: {}, 20: {}, 50: {}}

// Window is the slice of a sorted listing shown on one page.
type Window struct {
	Page       int
	PageSize   int
	TotalPages int
	Start      int
	End        int
}

// PageWindow clamps page and pageSize to the supported values and returns
// the [Start, End) bounds for a listing of total items. Pages past the end
// yield an empty window.
func PageWindow(total, page, pageSize int) Window {
	if _, ok := viewPageSizes[pageSize]; !ok {
		pageSize = DefaultViewPageSize
	}
	if page < 1 {
		page = 1
	}
	w := Window{Page: page, PageSize: pageSize}
	if total <= 0 {
		return w
	}
	w.TotalPages = (total + pageSize - 1) / pageSize
	w.Start = min((page-1)*pageSize, total)
	w.End = min(w.Start+pageSize, total)
	return w
}
