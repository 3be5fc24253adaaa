// Package http drives the catalog search over plain HTTP. It submits the
// search form and follows result links without a browser, which is enough
// for the static CGI pages the catalog serves.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/cmtharvest"
	"golang.org/x/net/html/charset"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = cmtharvest.DefaultPageTimeout

// Form field names of the catalog search page.
const (
	startYearField  = "yr"
	endYearField    = "oyr"
	outputTypeField = "otype"
)

// Ensure Opener implements cmtharvest.SessionOpener at compile time.
var _ cmtharvest.SessionOpener = (*Opener)(nil)

// Opener opens HTTP sessions against the catalog search page.
type Opener struct {
	client    *http.Client
	timeout   time.Duration
	searchURL string
}

// Option configures an Opener.
type Option func(*Opener)

// WithSearchURL sets the search form URL. Defaults to cmtharvest.DefaultSearchURL.
func WithSearchURL(u string) Option {
	return func(o *Opener) {
		o.searchURL = u
	}
}

// WithTimeout sets the timeout for each request.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(o *Opener) {
		o.timeout = d
	}
}

// NewOpener creates a new HTTP-based Opener.
func NewOpener(opts ...Option) *Opener {
	o := &Opener{
		timeout:   DefaultTimeout,
		searchURL: cmtharvest.DefaultSearchURL,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.client = &http.Client{Timeout: o.timeout}
	return o
}

// Open returns a new session. No request is made until Search.
func (o *Opener) Open(ctx context.Context) (cmtharvest.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Session{client: o.client, searchURL: o.searchURL}, nil
}

// Ensure Session implements cmtharvest.Session at compile time.
var _ cmtharvest.Session = (*Session)(nil)

// Session holds the current page of one harvest.
// A Session is not safe for concurrent use.
type Session struct {
	client    *http.Client
	searchURL string
	closed    atomic.Bool

	current *url.URL
	html    string
}

// Search loads the search form, fills in the year range and output type,
// and submits it.
func (s *Session) Search(ctx context.Context, q cmtharvest.SearchQuery) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	formURL, err := url.Parse(s.searchURL)
	if err != nil {
		return cmtharvest.Errorf(cmtharvest.EINVALID, "invalid search URL %q", s.searchURL)
	}
	body, err := s.get(ctx, formURL)
	if err != nil {
		return err
	}

	target, values, err := readForm(formURL, body)
	if err != nil {
		return err
	}
	values.Set(startYearField, strconv.Itoa(q.StartYear))
	values.Set(endYearField, strconv.Itoa(q.EndYear))
	if q.OutputType != "" {
		values.Set(outputTypeField, q.OutputType)
	}
	target.RawQuery = values.Encode()

	return s.load(ctx, target)
}

// HTML returns the HTML of the current page.
func (s *Session) HTML(ctx context.Context) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	if s.current == nil {
		return "", cmtharvest.Errorf(cmtharvest.EINVALID, "no page loaded")
	}
	return s.html, nil
}

// Follow loads the target of the link whose text is linkText.
// Returns cmtharvest.ErrAffordanceAbsent if the link is not on the page.
func (s *Session) Follow(ctx context.Context, linkText string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if s.current == nil {
		return cmtharvest.Errorf(cmtharvest.EINVALID, "no page loaded")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.html))
	if err != nil {
		return fmt.Errorf("parsing page: %w", err)
	}

	var href string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) == linkText {
			href, _ = a.Attr("href")
			return false
		}
		return true
	})
	if href == "" {
		return cmtharvest.ErrAffordanceAbsent
	}

	next, err := s.current.Parse(href)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", href, err)
	}
	return s.load(ctx, next)
}

// Close ends the session. Close is safe to call multiple times.
func (s *Session) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *Session) check(ctx context.Context) error {
	if s.closed.Load() {
		return cmtharvest.Errorf(cmtharvest.EINVALID, "session closed")
	}
	return ctx.Err()
}

// load fetches u and makes it the current page.
func (s *Session) load(ctx context.Context, u *url.URL) error {
	body, err := s.get(ctx, u)
	if err != nil {
		return err
	}
	s.current, s.html = u, body
	return nil
}

// get retrieves u and decodes the body to UTF-8.
func (s *Session) get(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, u)
	}

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", u, err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// readForm returns the action URL of the first form on the page and the
// values the browser would submit without user input.
func readForm(base *url.URL, html string) (*url.URL, url.Values, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing search form: %w", err)
	}

	form := doc.Find("form").First()
	if form.Length() == 0 {
		return nil, nil, cmtharvest.Errorf(cmtharvest.ENAVIGATION, "search form not found")
	}
	if method, ok := form.Attr("method"); ok && !strings.EqualFold(method, http.MethodGet) {
		return nil, nil, cmtharvest.Errorf(cmtharvest.ENAVIGATION, "search form uses unsupported method %q", method)
	}

	action, _ := form.Attr("action")
	target, err := base.Parse(action)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving form action %q: %w", action, err)
	}

	values := url.Values{}
	form.Find("input[name]").Each(func(_ int, in *goquery.Selection) {
		name, _ := in.Attr("name")
		value, _ := in.Attr("value")
		switch strings.ToLower(in.AttrOr("type", "text")) {
		case "submit", "button", "image", "reset", "file":
		case "radio", "checkbox":
			if _, checked := in.Attr("checked"); checked {
				values.Add(name, value)
			}
		default:
			values.Add(name, value)
		}
	})
	form.Find("select[name]").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		opt := sel.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = sel.Find("option").First()
		}
		if opt.Length() > 0 {
			values.Add(name, opt.AttrOr("value", strings.TrimSpace(opt.Text())))
		}
	})
	return target, values, nil
}
