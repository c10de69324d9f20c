package widget

// DefaultPageSize is the number of rows per table page.
const DefaultPageSize = 8

// Pager tracks the visible page of a paged table. Page is 1-based.
type Pager struct {
	PageSize int
	Page     int
}

func NewPager(pageSize int) Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Pager{PageSize: pageSize, Page: 1}
}

func (p Pager) pages(n int) int {
	if p.PageSize <= 0 {
		return 1
	}
	return (n + p.PageSize - 1) / p.PageSize
}

// TotalPages is ceil(n/PageSize), and at least 1.
func (p Pager) TotalPages(n int) int {
	return max(1, p.pages(n))
}

// Reset returns to the first page when the current page no longer exists.
func (p *Pager) Reset(n int) {
	if p.Page > p.pages(n) || p.Page < 1 {
		p.Page = 1
	}
}

// Next advances one page, stopping at the last.
func (p *Pager) Next(n int) {
	if p.Page < p.TotalPages(n) {
		p.Page++
	}
}

// Prev goes back one page, stopping at the first.
func (p *Pager) Prev() {
	if p.Page > 1 {
		p.Page--
	}
}

// Slice returns the [start, end) bounds of the current page within n rows.
func (p Pager) Slice(n int) (start, end int) {
	if p.PageSize <= 0 {
		return 0, n
	}
	start = min((max(p.Page, 1)-1)*p.PageSize, n)
	end = min(start+p.PageSize, n)
	return start, end
}
