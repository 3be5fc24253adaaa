package harvest

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/cmtharvest"
	"golang.org/x/sync/errgroup"
)

// progressBuffer is the number of events a Job queues before the worker
// blocks on a slow consumer.
const progressBuffer = 64

// Pipeline runs harvest, parse and write as one job.
type Pipeline struct {
	Harvester  cmtharvest.Harvester
	Serializer cmtharvest.TableSerializer
	Store      cmtharvest.ArtifactStore

	// Runs records each finished run. Optional.
	Runs cmtharvest.RunService

	// Patterns used by the parser. Nil selects the defaults.
	Patterns cmtharvest.PatternSet

	// TablePath is recorded on the run for later lookup.
	TablePath string

	Now func() time.Time
}

// Result holds the outcome of a pipeline job. Corpus and Dataset are set
// whenever any data was harvested, including on partial failures.
type Result struct {
	Run     *cmtharvest.Run
	Corpus  *cmtharvest.Corpus
	Dataset *cmtharvest.Dataset
	Table   *cmtharvest.TableStats
}

// Partial reports whether the result holds data from an incomplete harvest.
func (r *Result) Partial() bool {
	return r != nil && r.Run != nil && r.Run.Outcome == cmtharvest.OutcomePartial
}

// ProgressEvent reports progress during a pipeline job.
type ProgressEvent struct {
	Type     ProgressType
	Page     cmtharvest.PageProgress
	Records  int
	Warnings int
	Table    *cmtharvest.TableStats
	Error    error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressPage
	ProgressParsed
	ProgressWritten
	ProgressFinished
)

// ProgressFunc is a callback for reporting pipeline progress.
type ProgressFunc func(event ProgressEvent)

// Job is a running pipeline. Callers either range over Progress and then
// call Wait, or call Wait directly and ignore the events.
type Job struct {
	progress chan ProgressEvent
	cancel   context.CancelFunc
	done     chan struct{}
	result   *Result
	err      error
}

// Progress returns the single-consumer event channel. It is closed when
// the job ends.
func (j *Job) Progress() <-chan ProgressEvent {
	return j.progress
}

// Cancel stops the job. The harvest releases its session and whatever was
// collected so far is still parsed and written.
func (j *Job) Cancel() {
	j.cancel()
}

// Wait blocks until the job ends and returns its result. Events nobody has
// read yet are discarded so a full buffer cannot stall the job.
func (j *Job) Wait() (*Result, error) {
	for range j.progress {
	}
	<-j.done
	return j.result, j.err
}

// Start launches a job for years in the background.
func (p *Pipeline) Start(ctx context.Context, years cmtharvest.YearRange) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		progress: make(chan ProgressEvent, progressBuffer),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(j.done)
		defer close(j.progress)
		defer cancel()

		// Events are queued while there is room. Once the buffer is full the
		// worker waits for the consumer unless the job is canceled.
		emit := func(ev ProgressEvent) {
			select {
			case j.progress <- ev:
				return
			default:
			}
			select {
			case j.progress <- ev:
			case <-ctx.Done():
			}
		}
		j.result, j.err = p.execute(ctx, years, emit)
		emit(ProgressEvent{Type: ProgressFinished, Error: j.err})
	}()

	return j
}

// Run starts a job and blocks until it ends, passing every event to fn.
func (p *Pipeline) Run(ctx context.Context, years cmtharvest.YearRange, fn ProgressFunc) (*Result, error) {
	job := p.Start(ctx, years)
	for ev := range job.Progress() {
		if fn != nil {
			fn(ev)
		}
	}
	return job.Wait()
}

// Rebuild parses an existing corpus and writes its table without harvesting.
func (p *Pipeline) Rebuild(ctx context.Context, corpus *cmtharvest.Corpus) (*Result, error) {
	res := &Result{Corpus: corpus}
	ds, stats, err := p.write(ctx, corpus, false, nil)
	res.Dataset, res.Table = ds, stats
	return res, err
}

func (p *Pipeline) execute(ctx context.Context, years cmtharvest.YearRange, emit ProgressFunc) (*Result, error) {
	run := &cmtharvest.Run{
		StartYear: years.Start,
		EndYear:   years.End,
		TablePath: p.TablePath,
		StartedAt: p.now(),
	}
	res := &Result{Run: run}

	if err := years.Validate(); err != nil {
		run.Outcome = cmtharvest.OutcomeFailed
		run.Error = cmtharvest.ErrorMessage(err)
		run.FinishedAt = p.now()
		return res, err
	}

	emit(ProgressEvent{Type: ProgressStarted})

	corpus, herr := p.Harvester.Harvest(ctx, years, func(pp cmtharvest.PageProgress) {
		run.Pages = pp.Page
		emit(ProgressEvent{Type: ProgressPage, Page: pp})
	})
	res.Corpus = corpus

	// Stores and the run log must still see a canceled job through.
	wctx := context.WithoutCancel(ctx)

	if corpus == nil {
		if herr == nil {
			herr = cmtharvest.Errorf(cmtharvest.EINTERNAL, "harvest returned no corpus")
		}
		_ = p.Store.Abort()
		return res, p.finish(wctx, run, nil, cmtharvest.OutcomeFailed, herr)
	}

	run.Blocks = corpus.Len()
	run.CorpusHash = ComputeHash(corpus.String())

	ds, stats, err := p.write(wctx, corpus, true, emit)
	res.Dataset, res.Table = ds, stats
	if ds != nil {
		run.Records = ds.Len()
		run.Warnings = len(ds.Warnings)
	}
	if err != nil {
		return res, p.finish(wctx, run, ds, cmtharvest.OutcomeFailed, err)
	}
	emit(ProgressEvent{Type: ProgressWritten, Table: stats})

	outcome := cmtharvest.OutcomeComplete
	if herr != nil {
		outcome = cmtharvest.OutcomePartial
	}
	return res, p.finish(wctx, run, ds, outcome, herr)
}

// write parses corpus and saves the corpus and table concurrently, then
// commits both. Any failure aborts the store; the parsed dataset is still
// returned.
func (p *Pipeline) write(ctx context.Context, corpus *cmtharvest.Corpus, saveCorpus bool, emit ProgressFunc) (*cmtharvest.Dataset, *cmtharvest.TableStats, error) {
	var (
		ds    *cmtharvest.Dataset
		stats *cmtharvest.TableStats
	)

	g, gctx := errgroup.WithContext(ctx)
	if saveCorpus {
		g.Go(func() error {
			return p.Store.SaveCorpus(gctx, corpus)
		})
	}
	g.Go(func() error {
		parser := cmtharvest.NewParser(p.Patterns)
		for _, line := range corpus.Lines() {
			parser.Feed(line)
		}
		ds = parser.Finish()
		if emit != nil {
			emit(ProgressEvent{Type: ProgressParsed, Records: ds.Len(), Warnings: len(ds.Warnings)})
		}
		return p.Store.SaveTable(gctx, func(w io.Writer) error {
			var err error
			stats, err = p.Serializer.Serialize(ds, w)
			return err
		})
	})

	if err := g.Wait(); err != nil {
		_ = p.Store.Abort()
		return ds, nil, ioError(err, "writing artifacts")
	}
	if err := p.Store.Commit(); err != nil {
		_ = p.Store.Abort()
		return ds, nil, ioError(err, "committing artifacts")
	}
	return ds, stats, nil
}

// finish stamps the run and records it. The first error wins.
func (p *Pipeline) finish(ctx context.Context, run *cmtharvest.Run, ds *cmtharvest.Dataset, outcome cmtharvest.Outcome, err error) error {
	run.Outcome = outcome
	run.FinishedAt = p.now()
	if err != nil {
		run.Error = cmtharvest.ErrorMessage(err)
	}

	if p.Runs == nil {
		return err
	}
	if ds == nil {
		ds = &cmtharvest.Dataset{}
	}
	if rerr := p.Runs.CreateRun(ctx, run, ds); rerr != nil && err == nil {
		return cmtharvest.Wrap(cmtharvest.EINTERNAL, rerr, "recording run")
	}
	return err
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// ioError classifies a storage failure. Application errors keep their code.
func ioError(err error, msg string) error {
	if cmtharvest.ErrorCode(err) != cmtharvest.EINTERNAL {
		return err
	}
	return cmtharvest.Wrap(cmtharvest.EIO, err, "%s", msg)
}
