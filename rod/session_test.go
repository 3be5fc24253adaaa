//go:build integration

package rod_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/cmtharvest"
	"github.com/fwojciec/cmtharvest/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Session implements cmtharvest.Session.
var _ cmtharvest.Session = (*rod.Session)(nil)

const catalogForm = `<!DOCTYPE html>
<html><body>
<form action="/results" method="get">
<input type="text" name="yr" value="1976">
<input type="text" name="oyr" value="1976">
<input type="radio" name="otype" value="ymd">
<input type="radio" name="otype" value="jul" checked>
<input type="submit" value="Done">
</form>
</body></html>`

// newCatalogServer serves a search form and two result pages linked by
// a "More solutions" link.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/form", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(catalogForm))
	})
	mux.HandleFunc("/results", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		q := r.URL.Query()
		more := ""
		if q.Get("page") == "" {
			more = `<a href="/results?page=2">More solutions</a>`
		}
		fmt.Fprintf(w, `<!DOCTYPE html>
<html><body>
<h2>Results</h2>
<pre>yr=%s oyr=%s otype=%s page=%s</pre>
%s
</body></html>`, q.Get("yr"), q.Get("oyr"), q.Get("otype"), q.Get("page"), more)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSession_SearchAndFollow(t *testing.T) {
	t.Parallel()

	srv := newCatalogServer(t)

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	defer manager.Close()

	opener := rod.NewOpener(manager,
		rod.WithSearchURL(srv.URL+"/form"),
		rod.WithPageTimeout(10*time.Second),
	)

	ctx := context.Background()
	session, err := opener.Open(ctx)
	require.NoError(t, err)
	defer session.Close()

	err = session.Search(ctx, cmtharvest.SearchQuery{StartYear: 2019, EndYear: 2020, OutputType: "ymd"})
	require.NoError(t, err)

	html, err := session.HTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "yr=2019 oyr=2020 otype=ymd page=")

	err = session.Follow(ctx, cmtharvest.MoreSolutions)
	require.NoError(t, err)

	html, err = session.HTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "page=2")

	err = session.Follow(ctx, cmtharvest.MoreSolutions)
	assert.ErrorIs(t, err, cmtharvest.ErrAffordanceAbsent)
}

func TestSession_Follow_LoadTimeout(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/form", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(catalogForm))
	})
	mux.HandleFunc("/results", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html><body><h2>Results</h2><pre>first</pre><a href="/slow">More solutions</a></body></html>`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><body><h2>Results</h2><pre>second</pre></body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	defer manager.Close()

	opener := rod.NewOpener(manager,
		rod.WithSearchURL(srv.URL+"/form"),
		rod.WithPageTimeout(2*time.Second),
	)

	ctx := context.Background()
	session, err := opener.Open(ctx)
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Search(ctx, cmtharvest.SearchQuery{StartYear: 2019, EndYear: 2020}))

	err = session.Follow(ctx, cmtharvest.MoreSolutions)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSession_Close(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	defer manager.Close()

	session, err := rod.NewOpener(manager).Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close(), "second close should be a no-op")

	_, err = session.HTML(context.Background())
	require.Error(t, err)
	assert.Equal(t, cmtharvest.EINVALID, cmtharvest.ErrorCode(err))
	assert.Contains(t, cmtharvest.ErrorMessage(err), "closed")
}

func TestOpener_Open_ContextCancellation(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	defer manager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = rod.NewOpener(manager).Open(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpener_Open_AfterManagerClose(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	require.NoError(t, manager.Close())

	_, err = rod.NewOpener(manager).Open(context.Background())

	require.Error(t, err)
	assert.Equal(t, cmtharvest.EINVALID, cmtharvest.ErrorCode(err))
}
