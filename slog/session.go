// Package slog provides log/slog decorators for cmtharvest services.
package slog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/cmtharvest"
)

// Ensure LoggingOpener implements cmtharvest.SessionOpener.
var _ cmtharvest.SessionOpener = (*LoggingOpener)(nil)

// LoggingOpener wraps a SessionOpener so that every session it opens logs
// its navigation steps.
type LoggingOpener struct {
	next   cmtharvest.SessionOpener
	logger *slog.Logger
}

// NewLoggingOpener creates a new LoggingOpener.
func NewLoggingOpener(next cmtharvest.SessionOpener, logger *slog.Logger) *LoggingOpener {
	return &LoggingOpener{next: next, logger: logger}
}

// Open delegates to the wrapped opener and wraps the session.
func (o *LoggingOpener) Open(ctx context.Context) (_ cmtharvest.Session, err error) {
	defer func(begin time.Time) {
		o.logger.Info("open session",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	session, err := o.next.Open(ctx)
	if err != nil {
		return nil, err
	}
	return NewLoggingSession(session, o.logger), nil
}

// Ensure LoggingSession implements cmtharvest.Session.
var _ cmtharvest.Session = (*LoggingSession)(nil)

// LoggingSession wraps a Session with debug logging.
type LoggingSession struct {
	next   cmtharvest.Session
	logger *slog.Logger
}

// NewLoggingSession creates a new LoggingSession.
func NewLoggingSession(next cmtharvest.Session, logger *slog.Logger) *LoggingSession {
	return &LoggingSession{next: next, logger: logger}
}

// Search logs the submitted query.
func (s *LoggingSession) Search(ctx context.Context, q cmtharvest.SearchQuery) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"start", q.StartYear,
			"end", q.EndYear,
			"output", q.OutputType,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, q)
}

// HTML logs the size of the rendered page.
func (s *LoggingSession) HTML(ctx context.Context) (html string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("read page",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.HTML(ctx)
}

// Follow logs the link followed. A missing link is the normal end of
// pagination and is logged without an error.
func (s *LoggingSession) Follow(ctx context.Context, linkText string) (err error) {
	defer func(begin time.Time) {
		attrs := []any{"link", linkText, "duration", time.Since(begin)}
		if errors.Is(err, cmtharvest.ErrAffordanceAbsent) {
			attrs = append(attrs, "found", false)
		} else {
			attrs = append(attrs, "err", err)
		}
		s.logger.Info("follow", attrs...)
	}(time.Now())
	return s.next.Follow(ctx, linkText)
}

// Close logs session release.
func (s *LoggingSession) Close() (err error) {
	defer func() {
		s.logger.Info("close session", "err", err)
	}()
	return s.next.Close()
}
