// Package rod drives the catalog search interface with a headless Chrome browser.
package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/cmtharvest"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultRecycleAfter is the number of finished sessions after which the
// browser process is replaced.
const DefaultRecycleAfter = cmtharvest.DefaultRecycleAfter

// BrowserManager owns the Chrome process shared by all sessions. Chrome's
// memory only grows across navigations, so the process is replaced once
// enough sessions have finished and none is still open.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	recycleAfter int64
	headless     bool

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	active   int
	finished int64
	closed   bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithRecycleAfter sets how many sessions may finish before the browser is
// replaced. Zero or less disables recycling.
func WithRecycleAfter(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.recycleAfter = n
	}
}

// WithHeadless controls whether Chrome runs without a window. Defaults to true.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// NewBrowserManager launches Chrome. Close must be called to stop it.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		recycleAfter: DefaultRecycleAfter,
		headless:     true,
	}
	for _, opt := range opts {
		opt(bm)
	}

	browser, l, err := launch(bm.headless)
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = browser, l
	return bm, nil
}

// Acquire returns the browser for a new session and counts the session as
// active. Every successful Acquire must be paired with Release.
func (bm *BrowserManager) Acquire() (*rod.Browser, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, cmtharvest.Errorf(cmtharvest.EINVALID, "browser manager closed")
	}
	if bm.active == 0 && bm.recycleAfter > 0 && bm.finished >= bm.recycleAfter {
		bm.recycle()
	}
	bm.active++
	return bm.browser, nil
}

// Release marks a session acquired with Acquire as finished.
func (bm *BrowserManager) Release() {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.active > 0 {
		bm.active--
	}
	bm.finished++
}

// Close stops Chrome. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	return shutdown(bm.browser, bm.launcher)
}

// recycle swaps in a fresh browser. The old one is kept if the launch fails.
// Must be called with mu held.
func (bm *BrowserManager) recycle() {
	browser, l, err := launch(bm.headless)
	if err != nil {
		return
	}
	_ = shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = browser, l
	bm.finished = 0
}

// launch starts Chrome with flags that keep background tabs responsive.
func launch(headless bool) (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(headless)

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, l, nil
}

func shutdown(browser *rod.Browser, l *launcher.Launcher) error {
	var err error
	if browser != nil {
		err = browser.Close()
	}
	if l != nil {
		l.Kill()
	}
	return err
}
