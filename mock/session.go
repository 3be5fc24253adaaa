package mock

import (
	"context"

	"github.com/fwojciec/cmtharvest"
)

var _ cmtharvest.Session = (*Session)(nil)

// Session is a mock implementation of cmtharvest.Session.
type Session struct {
	SearchFn func(ctx context.Context, q cmtharvest.SearchQuery) error
	HTMLFn   func(ctx context.Context) (string, error)
	FollowFn func(ctx context.Context, linkText string) error
	CloseFn  func() error
}

func (s *Session) Search(ctx context.Context, q cmtharvest.SearchQuery) error {
	return s.SearchFn(ctx, q)
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	return s.HTMLFn(ctx)
}

func (s *Session) Follow(ctx context.Context, linkText string) error {
	return s.FollowFn(ctx, linkText)
}

func (s *Session) Close() error {
	return s.CloseFn()
}

var _ cmtharvest.SessionOpener = (*SessionOpener)(nil)

// SessionOpener is a mock implementation of cmtharvest.SessionOpener.
type SessionOpener struct {
	OpenFn func(ctx context.Context) (cmtharvest.Session, error)
}

func (o *SessionOpener) Open(ctx context.Context) (cmtharvest.Session, error) {
	return o.OpenFn(ctx)
}
