package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/cmtharvest"
	main "github.com/fwojciec/cmtharvest/cmd/cmtharvest"
	"github.com/fwojciec/cmtharvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("no command prints usage", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := main.NewMain().Run(context.Background(), nil, stdout, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, stdout.String(), "harvest")
	})

	t.Run("help succeeds", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "regress")
	})

	t.Run("runs command uses injected run service", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.Runs = &mock.RunService{
			FindRunsFn: func(_ context.Context, filter cmtharvest.RunFilter) ([]*cmtharvest.Run, error) {
				assert.Equal(t, 3, filter.Limit)
				return []*cmtharvest.Run{{ID: "run-9", StartYear: 2001, EndYear: 2001, Outcome: cmtharvest.OutcomeComplete}}, nil
			},
		}

		stdout := &bytes.Buffer{}
		config := filepath.Join(t.TempDir(), "missing.yaml")
		err := m.Run(context.Background(), []string{"--config", config, "runs", "-n", "3"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "run-9")
	})

	t.Run("harvests over http end to end", func(t *testing.T) {
		t.Parallel()

		srv := newCatalogServer(t)
		dir := t.TempDir()
		config := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(config, []byte(fmt.Sprintf(
			"search_url: %s/form\npages_per_second: 1000\nretry_delays: []\n", srv.URL)), 0o644))

		var recorded *cmtharvest.Run
		m := main.NewMain()
		m.Runs = &mock.RunService{
			CreateRunFn: func(_ context.Context, run *cmtharvest.Run, ds *cmtharvest.Dataset) error {
				run.ID = "run-1"
				recorded = run
				return nil
			},
		}

		table := filepath.Join(dir, "out.csv")
		args := []string{"--config", config, "harvest", "2020", "2020",
			"--engine", "http", "-o", table, "-c", filepath.Join(dir, "corpus.txt")}
		stdout := &bytes.Buffer{}
		err := m.Run(context.Background(), args, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		require.NotNil(t, recorded)
		assert.Equal(t, 2, recorded.Pages)
		assert.Equal(t, 2, recorded.Records)

		data, err := os.ReadFile(table)
		require.NoError(t, err)
		assert.Equal(t,
			"year,month,day,hour,minute,second,Lat,Lon,Mw,mb,Ms,Scalar Moment\n"+
				"2020,1,5,12,30,15.0,10.5,-60.2,5.5,5.0,5.6,1.2e+17\n"+
				"2020,2,1,0,0,1.0,1.0,2.0,6.0,5.9,6.1,3.3e+25\n",
			string(data))
		assert.FileExists(t, filepath.Join(dir, "corpus.txt"))
	})

	t.Run("invalid config file", func(t *testing.T) {
		t.Parallel()

		config := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(config, []byte("pages_per_second: -1\n"), 0o644))

		err := main.NewMain().Run(context.Background(), []string{"--config", config, "show", "x.csv"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "pages per second")
	})

	t.Run("show does not need a database", func(t *testing.T) {
		t.Parallel()

		table := filepath.Join(t.TempDir(), "t.csv")
		require.NoError(t, os.WriteFile(table, []byte("Mw\n5.5\n"), 0o644))
		config := filepath.Join(t.TempDir(), "missing.yaml")

		m := main.NewMain()
		stdout := &bytes.Buffer{}
		err := m.Run(context.Background(), []string{"--config", config, "show", table}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Equal(t, "Mw\n5.5\n", stdout.String())
		assert.Nil(t, m.DB)
	})
}

// newCatalogServer serves a search form and two result pages of one event
// each, linked by a "More solutions" link.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"": eventBlock,
		"2": "Date: 2020/ 2/ 1 Centroid Time: 0: 0: 1.0 GMT\n" +
			"Lat= 1.0 Lon= 2.0\n" +
			"Mw = 6.0 mb = 5.9 Ms = 6.1 Scalar Moment = 3.3e+25",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/form", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><form action="/results">
<input name="yr" value="1976"><input name="oyr" value="1976">
<input type="radio" name="otype" value="ymd"><input type="submit" value="Done">
</form></body></html>`)
	})
	mux.HandleFunc("/results", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		more := ""
		if page == "" {
			more = `<a href="/results?page=2">More solutions</a>`
		}
		fmt.Fprintf(w, "<html><body><h2>Results</h2><pre>%s</pre>%s</body></html>", pages[page], more)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
