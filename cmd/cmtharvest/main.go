package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/cmtharvest"
	"github.com/fwojciec/cmtharvest/csv"
	"github.com/fwojciec/cmtharvest/fs"
	"github.com/fwojciec/cmtharvest/goquery"
	"github.com/fwojciec/cmtharvest/harvest"
	cmthttp "github.com/fwojciec/cmtharvest/http"
	"github.com/fwojciec/cmtharvest/rod"
	cmtslog "github.com/fwojciec/cmtharvest/slog"
	"github.com/fwojciec/cmtharvest/sqlite"
	"github.com/fwojciec/cmtharvest/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		// Command errors have already been reported.
		var e *cmtharvest.Error
		if !errors.As(err, &e) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by the run service.
	DB *sqlite.DB

	// Runs overrides the SQLite run service. Used by end-to-end tests.
	Runs cmtharvest.RunService

	// Opener overrides the browser session opener. Used by end-to-end tests.
	Opener cmtharvest.SessionOpener
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("cmtharvest"),
		kong.Description("Harvest Global CMT catalog search results into an event table."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'cmtharvest --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = kongCtx.Selected().Name

	deps.Logger = newLogger(stderr, cli.Verbose)

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	deps.Config = cfg

	switch cmd {
	case "harvest", "runs", "export", "delete":
		runs, err := m.openRuns(cli.DB, stderr, deps.Logger)
		if err != nil {
			return err
		}
		defer m.Close()
		deps.Runs = runs
	}

	switch cmd {
	case "harvest":
		opener := m.Opener
		if opener == nil {
			engine := firstNonEmpty(cli.Harvest.Engine, cfg.Engine)
			switch engine {
			case cmtharvest.EngineHTTP:
				opener = cmthttp.NewOpener(
					cmthttp.WithSearchURL(cfg.SearchURL),
					cmthttp.WithTimeout(cfg.PageTimeout),
				)
			case cmtharvest.EngineBrowser:
				manager, err := rod.NewBrowserManager(
					rod.WithHeadless(*cfg.Headless),
					rod.WithRecycleAfter(cfg.RecycleAfter),
				)
				if err != nil {
					fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or use --engine http")
					return fmt.Errorf("failed to start browser: %w", err)
				}
				defer manager.Close()
				opener = rod.NewOpener(manager,
					rod.WithSearchURL(cfg.SearchURL),
					rod.WithPageTimeout(cfg.PageTimeout),
				)
			default:
				return report(stderr, cmtharvest.Errorf(cmtharvest.EINVALID, "unknown engine %q", engine))
			}
		}

		table := firstNonEmpty(cli.Harvest.Out, cfg.TablePath)
		deps.Pipeline = &harvest.Pipeline{
			Harvester:  cmtslog.NewLoggingHarvester(newHarvester(cfg, opener, deps.Logger), deps.Logger),
			Serializer: cmtslog.NewLoggingSerializer(csv.NewSerializer(), deps.Logger),
			Store:      fs.NewFileStore(firstNonEmpty(cli.Harvest.Corpus, cfg.CorpusPath), table),
			Runs:       deps.Runs,
			TablePath:  table,
		}

	case "parse":
		deps.Pipeline = &harvest.Pipeline{
			Serializer: cmtslog.NewLoggingSerializer(csv.NewSerializer(), deps.Logger),
			Store:      fs.NewFileStore("", firstNonEmpty(cli.Parse.Out, cfg.TablePath)),
		}
	}

	return kongCtx.Run(deps)
}

// newHarvester wires the pagination protocol to the session opener and the
// goquery block extractor.
func newHarvester(cfg *cmtharvest.Config, opener cmtharvest.SessionOpener, logger *slog.Logger) *harvest.Harvester {
	return &harvest.Harvester{
		Sessions:    cmtslog.NewLoggingOpener(opener, logger),
		Extractor:   goquery.NewBlockExtractor(),
		RateLimiter: harvest.NewPageLimiter(cfg.PagesPerSecond),
		RetryDelays: cfg.RetryDelays,
		MaxPages:    cfg.MaxPages,
		Logger: func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		},
	}
}

func (m *Main) openRuns(path string, stderr io.Writer, logger *slog.Logger) (cmtharvest.RunService, error) {
	if m.Runs != nil {
		return m.Runs, nil
	}
	if path == "" {
		path = defaultDBPath()
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set CMTHARVEST_DB to use a different database path\n")
		return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	return cmtslog.NewLoggingRunService(sqlite.NewRunService(m.DB), logger), nil
}

// newLogger returns a text logger on stderr when verbose, otherwise a
// logger that discards everything.
func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadConfig reads the config file and merges it over the defaults.
func loadConfig(path string) (*cmtharvest.Config, error) {
	if path == "" {
		p, err := yaml.DefaultPath()
		if err != nil {
			return cmtharvest.DefaultConfig(), nil
		}
		path = p
	}
	fileCfg, err := yaml.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %s", path, message(err))
	}
	return fileCfg.Merge(cmtharvest.DefaultConfig()), nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cmtharvest.db"
	}
	dir := filepath.Join(home, ".cmtharvest")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "cmtharvest.db")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
