package cmtharvest

import (
	"context"
	"io"
)

// YearRange is the inclusive range of catalog years to harvest.
type YearRange struct {
	Start int
	End   int
}

// Validate returns EINVALID if the range is reversed.
func (r YearRange) Validate() error {
	if r.End < r.Start {
		return Errorf(EINVALID, "invalid year range: end year %d is before start year %d", r.End, r.Start)
	}
	return nil
}

// PageProgress reports a harvested result page.
type PageProgress struct {
	Page        int // 1-based page number
	Blocks      int // blocks on this page
	TotalBlocks int // blocks harvested so far
}

// PageProgressFunc is called after each page is harvested.
type PageProgressFunc func(PageProgress)

// Harvester drives the pagination protocol for a year range.
// On a fatal error after at least one page, the corpus harvested so far is
// returned alongside the error.
type Harvester interface {
	Harvest(ctx context.Context, years YearRange, progress PageProgressFunc) (*Corpus, error)
}

// TableStats describes a written table.
type TableStats struct {
	Columns []string
	Rows    int
}

// TableSerializer writes a dataset as a rectangular table.
type TableSerializer interface {
	Serialize(ds *Dataset, w io.Writer) (*TableStats, error)
}
