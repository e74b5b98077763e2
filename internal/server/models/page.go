package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Page selects a slice of a listing. Number starts at 1. Sort names a column
// from the repository's whitelist; unknown names fall back to the default order.
type Page struct {
	Number int
	Size   int
	Sort   string
	Desc   bool
}

// Normalize clamps Number and Size into their valid ranges.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}
