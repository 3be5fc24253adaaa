// Package harvest drives the catalog pagination protocol and orchestrates
// the harvest, parse and write stages of a run.
package harvest

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/cmtharvest"
	"github.com/fwojciec/cmtharvest/bloom"
)

// Ensure Harvester implements cmtharvest.Harvester at compile time.
var _ cmtharvest.Harvester = (*Harvester)(nil)

// DefaultOutputType requests year/month/day dates from the catalog.
const DefaultOutputType = "ymd"

// Harvester pages through catalog results for a year range.
type Harvester struct {
	Sessions    cmtharvest.SessionOpener
	Extractor   cmtharvest.BlockExtractor
	RateLimiter Limiter
	RetryDelays []time.Duration
	MaxPages    int
	OutputType  string
	Logger      LogFunc
}

// Harvest opens a session, submits the search, and collects result blocks
// page by page until the next-page link disappears.
//
// If the first page has no results marker the error is ENORESULTS and no
// corpus is returned. Failures on later pages return the blocks collected
// so far alongside the error. The session is closed on every path.
func (h *Harvester) Harvest(ctx context.Context, years cmtharvest.YearRange, progress cmtharvest.PageProgressFunc) (_ *cmtharvest.Corpus, err error) {
	if err := years.Validate(); err != nil {
		return nil, err
	}

	session, err := h.Sessions.Open(ctx)
	if err != nil {
		return nil, stepError(ctx, err, 0, "opening session")
	}
	defer func() {
		if cerr := session.Close(); cerr != nil && err == nil {
			err = cmtharvest.Wrap(cmtharvest.EINTERNAL, cerr, "closing session")
		}
	}()

	query := cmtharvest.SearchQuery{
		StartYear:  years.Start,
		EndYear:    years.End,
		OutputType: h.outputType(),
	}
	if err := h.retry(ctx, "search", func(ctx context.Context) error {
		return session.Search(ctx, query)
	}); err != nil {
		return nil, stepError(ctx, err, 0, "submitting search")
	}

	maxPages := h.MaxPages
	if maxPages <= 0 {
		maxPages = cmtharvest.DefaultMaxPages
	}
	seen := bloom.NewFilter(uint(maxPages), 1e-9)

	corpus := &cmtharvest.Corpus{}
	for page := 1; ; page++ {
		var html string
		if err := h.retry(ctx, "read page", func(ctx context.Context) error {
			var err error
			html, err = session.HTML(ctx)
			return err
		}); err != nil {
			return partial(corpus, page), stepError(ctx, err, page-1, "reading page %d", page)
		}

		blocks, err := h.Extractor.Extract(html)
		if err != nil {
			return partial(corpus, page), cmtharvest.Wrap(cmtharvest.ENAVIGATION, err, "unexpected structure on page %d", page)
		}
		if !blocks.HasResults {
			if page == 1 {
				return nil, cmtharvest.Errorf(cmtharvest.ENORESULTS, "no results for years %s", FormatYears(years.Start, years.End))
			}
			return corpus, cmtharvest.Errorf(cmtharvest.ENAVIGATION, "page %d has no results marker", page)
		}

		if len(blocks.Blocks) > 0 && seen.TestAndAdd(bloom.Fingerprint(blocks.Blocks)) {
			return corpus, cmtharvest.Errorf(cmtharvest.ENAVIGATION, "page %d repeats an earlier page", page)
		}
		corpus.Append(blocks.Blocks...)

		if progress != nil {
			progress(cmtharvest.PageProgress{
				Page:        page,
				Blocks:      len(blocks.Blocks),
				TotalBlocks: corpus.Len(),
			})
		}

		if page >= maxPages {
			return corpus, cmtharvest.Errorf(cmtharvest.ENAVIGATION, "stopped after %d pages", maxPages)
		}

		if h.RateLimiter != nil {
			if err := h.RateLimiter.Wait(ctx); err != nil {
				return corpus, stepError(ctx, err, page, "waiting for page %d", page+1)
			}
		}

		if err := ctx.Err(); err != nil {
			return corpus, stepError(ctx, err, page, "following to page %d", page+1)
		}
		err = h.retry(ctx, "follow", func(ctx context.Context) error {
			return session.Follow(ctx, cmtharvest.MoreSolutions)
		})
		if errors.Is(err, cmtharvest.ErrAffordanceAbsent) {
			return corpus, nil
		}
		if err != nil {
			return corpus, stepError(ctx, err, page, "following to page %d", page+1)
		}
	}
}

func (h *Harvester) retry(ctx context.Context, name string, step StepFunc) error {
	delays := h.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return Retry(ctx, name, step, h.Logger, delays)
}

func (h *Harvester) outputType() string {
	if h.OutputType == "" {
		return DefaultOutputType
	}
	return h.OutputType
}

// partial returns the corpus for a failure on page. A failure before the
// first page has been read yields no corpus.
func partial(corpus *cmtharvest.Corpus, page int) *cmtharvest.Corpus {
	if page <= 1 {
		return nil
	}
	return corpus
}

// stepError classifies a failed navigation step. Cancellation takes
// precedence so callers can tell an abort from a site failure.
func stepError(ctx context.Context, err error, pages int, format string, args ...any) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		cause := ctx.Err()
		if cause == nil {
			cause = err
		}
		return cmtharvest.Wrap(cmtharvest.ECANCELED, cause, "harvest canceled after %d pages", pages)
	}
	return cmtharvest.Wrap(cmtharvest.ENAVIGATION, err, format, args...)
}
