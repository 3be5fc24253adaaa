package cmtharvest

import "time"

// Default configuration values.
const (
	DefaultSearchURL      = "https://www.globalcmt.org/CMTsearch.html"
	DefaultPagesPerSecond = 0.5
	DefaultMaxPages       = 500
	DefaultPageTimeout    = 30 * time.Second
	DefaultCorpusPath     = "event_data.txt"
	DefaultTablePath      = "event_data.csv"
	DefaultRecycleAfter   = 75
	DefaultEngine         = EngineBrowser
)

// Session engines.
const (
	EngineBrowser = "browser"
	EngineHTTP    = "http"
)

// DefaultRetryDelays returns the backoff delays for transient navigation
// failures: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Config holds harvest settings. Zero fields fall back to defaults.
type Config struct {
	SearchURL      string          `yaml:"search_url"`
	Engine         string          `yaml:"engine"`
	PagesPerSecond float64         `yaml:"pages_per_second"`
	RetryDelays    []time.Duration `yaml:"retry_delays"`
	MaxPages       int             `yaml:"max_pages"`
	PageTimeout    time.Duration   `yaml:"page_timeout"`
	Headless       *bool           `yaml:"headless"`
	RecycleAfter   int64           `yaml:"recycle_after"`
	CorpusPath     string          `yaml:"corpus_path"`
	TablePath      string          `yaml:"table_path"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	headless := true
	return &Config{
		SearchURL:      DefaultSearchURL,
		Engine:         DefaultEngine,
		PagesPerSecond: DefaultPagesPerSecond,
		RetryDelays:    DefaultRetryDelays(),
		MaxPages:       DefaultMaxPages,
		PageTimeout:    DefaultPageTimeout,
		Headless:       &headless,
		RecycleAfter:   DefaultRecycleAfter,
		CorpusPath:     DefaultCorpusPath,
		TablePath:      DefaultTablePath,
	}
}

// Merge returns a copy of c with zero fields filled from defaults.
// Non-zero fields are copied as is, so Validate still sees bad values.
func (c *Config) Merge(defaults *Config) *Config {
	out := *defaults
	if c == nil {
		return &out
	}
	if c.SearchURL != "" {
		out.SearchURL = c.SearchURL
	}
	if c.Engine != "" {
		out.Engine = c.Engine
	}
	if c.PagesPerSecond != 0 {
		out.PagesPerSecond = c.PagesPerSecond
	}
	if c.RetryDelays != nil {
		out.RetryDelays = c.RetryDelays
	}
	if c.MaxPages != 0 {
		out.MaxPages = c.MaxPages
	}
	if c.PageTimeout != 0 {
		out.PageTimeout = c.PageTimeout
	}
	if c.Headless != nil {
		out.Headless = c.Headless
	}
	if c.RecycleAfter != 0 {
		out.RecycleAfter = c.RecycleAfter
	}
	if c.CorpusPath != "" {
		out.CorpusPath = c.CorpusPath
	}
	if c.TablePath != "" {
		out.TablePath = c.TablePath
	}
	return &out
}

// Validate returns an error if the configuration contains invalid fields.
func (c *Config) Validate() error {
	if c.SearchURL == "" {
		return Errorf(EINVALID, "search URL required")
	}
	switch c.Engine {
	case EngineBrowser, EngineHTTP:
	default:
		return Errorf(EINVALID, "engine must be %q or %q, got %q", EngineBrowser, EngineHTTP, c.Engine)
	}
	if c.PagesPerSecond < 0 {
		return Errorf(EINVALID, "pages per second must not be negative")
	}
	if c.MaxPages < 0 {
		return Errorf(EINVALID, "max pages must not be negative")
	}
	if c.PageTimeout < 0 {
		return Errorf(EINVALID, "page timeout must not be negative")
	}
	if c.RecycleAfter < 0 {
		return Errorf(EINVALID, "recycle limit must not be negative")
	}
	for _, d := range c.RetryDelays {
		if d < 0 {
			return Errorf(EINVALID, "retry delays must not be negative")
		}
	}
	return nil
}
