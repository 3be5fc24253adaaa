package slog

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/cmtharvest"
)

// Ensure LoggingHarvester implements cmtharvest.Harvester.
var _ cmtharvest.Harvester = (*LoggingHarvester)(nil)

// LoggingHarvester wraps a Harvester with logging.
type LoggingHarvester struct {
	next   cmtharvest.Harvester
	logger *slog.Logger
}

// NewLoggingHarvester creates a new LoggingHarvester.
func NewLoggingHarvester(next cmtharvest.Harvester, logger *slog.Logger) *LoggingHarvester {
	return &LoggingHarvester{next: next, logger: logger}
}

// Harvest logs every page and a summary line when the harvest ends.
func (h *LoggingHarvester) Harvest(ctx context.Context, years cmtharvest.YearRange, progress cmtharvest.PageProgressFunc) (corpus *cmtharvest.Corpus, err error) {
	pages := 0
	defer func(begin time.Time) {
		h.logger.Info("harvest",
			"start", years.Start,
			"end", years.End,
			"pages", pages,
			"blocks", corpus.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	return h.next.Harvest(ctx, years, func(p cmtharvest.PageProgress) {
		pages = p.Page
		h.logger.Debug("page", "page", p.Page, "blocks", p.Blocks, "total", p.TotalBlocks)
		if progress != nil {
			progress(p)
		}
	})
}

// Ensure LoggingSerializer implements cmtharvest.TableSerializer.
var _ cmtharvest.TableSerializer = (*LoggingSerializer)(nil)

// LoggingSerializer wraps a TableSerializer with logging.
type LoggingSerializer struct {
	next   cmtharvest.TableSerializer
	logger *slog.Logger
}

// NewLoggingSerializer creates a new LoggingSerializer.
func NewLoggingSerializer(next cmtharvest.TableSerializer, logger *slog.Logger) *LoggingSerializer {
	return &LoggingSerializer{next: next, logger: logger}
}

// Serialize logs the table shape and parse warning counts.
func (s *LoggingSerializer) Serialize(ds *cmtharvest.Dataset, w io.Writer) (stats *cmtharvest.TableStats, err error) {
	defer func(begin time.Time) {
		columns, rows := 0, 0
		if stats != nil {
			columns, rows = len(stats.Columns), stats.Rows
		}
		s.logger.Info("serialize",
			"rows", rows,
			"columns", columns,
			"unmatched", ds.CountWarnings(cmtharvest.WarnUnmatchedLine),
			"malformed", ds.CountWarnings(cmtharvest.WarnMalformedNumber),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Serialize(ds, w)
}
