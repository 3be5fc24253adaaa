package rod

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/fwojciec/cmtharvest"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultPageTimeout bounds each navigation step of a session.
const DefaultPageTimeout = cmtharvest.DefaultPageTimeout

// Form field selectors of the catalog search page.
const (
	startYearSelector = `input[name="yr"]`
	endYearSelector   = `input[name="oyr"]`
	submitSelector    = `input[type="submit"][value="Done"]`
)

// Ensure Opener implements cmtharvest.SessionOpener at compile time.
var _ cmtharvest.SessionOpener = (*Opener)(nil)

// Opener opens browser sessions against the catalog search page.
// Opener is safe for concurrent use by multiple goroutines.
type Opener struct {
	manager   *BrowserManager
	searchURL string
	timeout   time.Duration
}

// OpenerOption configures an Opener.
type OpenerOption func(*Opener)

// WithSearchURL sets the search form URL. Defaults to cmtharvest.DefaultSearchURL.
func WithSearchURL(u string) OpenerOption {
	return func(o *Opener) {
		o.searchURL = u
	}
}

// WithPageTimeout sets the timeout for each navigation step.
// Defaults to DefaultPageTimeout.
func WithPageTimeout(d time.Duration) OpenerOption {
	return func(o *Opener) {
		o.timeout = d
	}
}

// NewOpener creates an Opener that draws browsers from manager.
func NewOpener(manager *BrowserManager, opts ...OpenerOption) *Opener {
	o := &Opener{
		manager:   manager,
		searchURL: cmtharvest.DefaultSearchURL,
		timeout:   DefaultPageTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open creates a new browser tab for one harvest.
func (o *Opener) Open(ctx context.Context) (cmtharvest.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := o.manager.Acquire()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		o.manager.Release()
		return nil, fmt.Errorf("opening browser tab: %w", err)
	}

	return &Session{
		page:      page,
		manager:   o.manager,
		searchURL: o.searchURL,
		timeout:   o.timeout,
	}, nil
}

// Ensure Session implements cmtharvest.Session at compile time.
var _ cmtharvest.Session = (*Session)(nil)

// Session is a single browser tab driving the catalog search.
// A Session is not safe for concurrent use.
type Session struct {
	page      *rod.Page
	manager   *BrowserManager
	searchURL string
	timeout   time.Duration
	closed    atomic.Bool
}

// Search fills in the year range and output type, submits the form, and
// waits for the first result page.
func (s *Session) Search(ctx context.Context, q cmtharvest.SearchQuery) error {
	page, cancel, err := s.step(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := page.Navigate(s.searchURL); err != nil {
		return fmt.Errorf("navigating to search form: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("loading search form: %w", err)
	}

	if err := fillInput(page, startYearSelector, strconv.Itoa(q.StartYear)); err != nil {
		return err
	}
	if err := fillInput(page, endYearSelector, strconv.Itoa(q.EndYear)); err != nil {
		return err
	}

	if q.OutputType != "" {
		radio, err := page.Element(fmt.Sprintf(`input[type="radio"][name="otype"][value=%q]`, q.OutputType))
		if err != nil {
			return fmt.Errorf("finding output type %q: %w", q.OutputType, err)
		}
		if err := radio.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("selecting output type: %w", err)
		}
	}

	submit, err := page.Element(submitSelector)
	if err != nil {
		return fmt.Errorf("finding submit button: %w", err)
	}
	return clickAndWait(page, submit)
}

// HTML returns the rendered HTML of the current page.
func (s *Session) HTML(ctx context.Context) (string, error) {
	page, cancel, err := s.step(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	return page.HTML()
}

// Follow clicks the link whose text is linkText and waits for the next page.
// Returns cmtharvest.ErrAffordanceAbsent if the link is not on the page.
func (s *Session) Follow(ctx context.Context, linkText string) error {
	page, cancel, err := s.step(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	has, link, err := page.HasR("a", `^\s*`+regexp.QuoteMeta(linkText)+`\s*$`)
	if err != nil {
		return fmt.Errorf("looking for %q: %w", linkText, err)
	}
	if !has {
		return cmtharvest.ErrAffordanceAbsent
	}
	return clickAndWait(page, link)
}

// Close closes the browser tab. Close is safe to call multiple times.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	defer s.manager.Release()
	return s.page.Close()
}

// step returns the page bound to ctx with the per-step timeout applied.
func (s *Session) step(ctx context.Context) (*rod.Page, context.CancelFunc, error) {
	if s.closed.Load() {
		return nil, nil, cmtharvest.Errorf(cmtharvest.EINVALID, "session closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.page.Context(ctx), cancel, nil
}

// fillInput replaces the value of the input matching selector.
func fillInput(page *rod.Page, selector, value string) error {
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("finding %s: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("clearing %s: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("typing into %s: %w", selector, err)
	}
	return nil
}

// clickAndWait clicks el and blocks until the resulting navigation has loaded.
// wait returns silently when the page context ends, so its error is checked
// afterwards: a step that ran out of time must not look like a loaded page.
func clickAndWait(page *rod.Page, el *rod.Element) error {
	wait := page.WaitNavigation(proto.PageLifecycleEventNameLoad)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("clicking: %w", err)
	}
	wait()
	if err := page.GetContext().Err(); err != nil {
		return fmt.Errorf("waiting for page load: %w", err)
	}
	return nil
}
