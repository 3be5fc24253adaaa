package cmtharvest

import "context"

// MoreSolutions is the link text of the next-page affordance on result pages.
const MoreSolutions = "More solutions"

// ErrAffordanceAbsent is returned by Session.Follow when the requested link
// is not on the current page. It is the expected end of pagination.
var ErrAffordanceAbsent = Errorf(ENOTFOUND, "affordance not found")

// SearchQuery is the catalog search submitted at the start of a harvest.
type SearchQuery struct {
	StartYear int
	EndYear   int

	// OutputType selects the result granularity, "ymd" for year/month/day.
	OutputType string
}

// Session is a retrieval session against the catalog search interface.
// Implementations may use browser automation to drive the search form.
// A Session is a scoped resource: Close must be called on every exit path.
type Session interface {
	// Search fills and submits the search form and waits for the first
	// result page to load.
	Search(ctx context.Context, q SearchQuery) error

	// HTML returns the rendered HTML of the current page.
	HTML(ctx context.Context) (string, error)

	// Follow activates the link with the given text and waits for the next
	// page to load. Returns ErrAffordanceAbsent if there is no such link.
	Follow(ctx context.Context, linkText string) error

	// Close releases the session.
	Close() error
}

// SessionOpener acquires retrieval sessions.
type SessionOpener interface {
	Open(ctx context.Context) (Session, error)
}

// PageBlocks holds the blocks extracted from one result page.
type PageBlocks struct {
	// HasResults is false when the page lacks the results marker.
	HasResults bool

	Blocks []RawBlock
}

// BlockExtractor extracts raw event blocks from a result page.
type BlockExtractor interface {
	// Extract parses HTML and returns the text blocks following the
	// results marker, in document order.
	Extract(html string) (*PageBlocks, error)
}
