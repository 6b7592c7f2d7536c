// Package sweep computes many cycle variants concurrently over a worker
// pool. Results are ordered by job index, so a sweep is deterministic
// regardless of worker count.
package sweep

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Katakuri004/HT-Project-Scripts/internal/model"
	"github.com/Katakuri004/HT-Project-Scripts/internal/queue"
	"github.com/Katakuri004/HT-Project-Scripts/internal/storage"
	"github.com/Katakuri004/HT-Project-Scripts/pkg/cycle"
)

// Job is one cycle variant to compute.
type Job struct {
	Index  int
	Label  string
	Params cycle.Parameters
}

// Result pairs a job with its computed trace. RunID is set when a storage
// backend persisted the run.
type Result struct {
	Job   Job
	Trace *cycle.Trace
	RunID uint
	Err   error
}

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Runner executes sweep jobs over a pool of workers.
type Runner struct {
	workers     int
	sampleCount int
	rpm         float64
	preset      string
	logger      Logger
	backend     storage.Backend // optional, nil disables persistence
	progress    func(completed, total int)

	pending *queue.Queue[Job]

	progressMu sync.Mutex
	doneCount  int
	totalJobs  int

	// OTEL metrics via the global meter (no-op if not configured)
	completed metric.Int64Counter
	failed    metric.Int64Counter
	queueSize metric.Int64ObservableGauge
}

// Options configures a Runner. Progress, when set, is called once per
// finished job with the running completion count.
type Options struct {
	Workers     int
	SampleCount int
	RPM         float64
	Preset      string
	Backend     storage.Backend
	Progress    func(completed, total int)
}

// NewRunner creates a sweep runner. Workers below 1 is an error.
func NewRunner(opts Options, logger Logger) (*Runner, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("sweep needs at least one worker, got %d", opts.Workers)
	}
	if opts.SampleCount < 2 {
		return nil, fmt.Errorf("sweep needs at least two samples per cycle, got %d", opts.SampleCount)
	}

	r := &Runner{
		workers:     opts.Workers,
		sampleCount: opts.SampleCount,
		rpm:         opts.RPM,
		preset:      opts.Preset,
		logger:      logger,
		backend:     opts.Backend,
		progress:    opts.Progress,
		pending:     queue.New[Job](),
	}

	m := meter()

	var err error
	r.completed, err = m.Int64Counter(
		"sweep.jobs.completed",
		metric.WithDescription("Total sweep jobs completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating completed counter: %w", err)
	}

	r.failed, err = m.Int64Counter(
		"sweep.jobs.failed",
		metric.WithDescription("Total sweep jobs that returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	r.queueSize, err = m.Int64ObservableGauge(
		"sweep.queue.size",
		metric.WithDescription("Jobs waiting for a worker"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(r.queueSize, int64(r.pending.Len()))
			return nil
		},
		r.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	return r, nil
}

// Run computes all jobs and returns results indexed by Job.Index. Individual
// job failures land in Result.Err; Run itself fails only on cancellation or
// malformed input.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	for i, job := range jobs {
		if job.Index != i {
			return nil, fmt.Errorf("job %d has index %d, want contiguous indices", i, job.Index)
		}
	}

	results := make([]Result, len(jobs))
	r.progressMu.Lock()
	r.doneCount = 0
	r.totalJobs = len(jobs)
	r.progressMu.Unlock()
	for _, job := range jobs {
		r.pending.Push(job)
	}

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.workLoop(ctx, workerID, results)
		}(w)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.logger.Info("sweep complete", "jobs", len(jobs), "workers", r.workers)
	return results, nil
}

func (r *Runner) workLoop(ctx context.Context, workerID int, results []Result) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, ok := r.pending.TryPop()
		if !ok {
			return
		}

		results[job.Index] = r.compute(ctx, job)
		if results[job.Index].Err != nil {
			r.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("label", job.Label)))
			r.logger.Error("sweep job failed",
				"worker", workerID, "label", job.Label, "error", results[job.Index].Err)
		} else {
			r.completed.Add(ctx, 1, metric.WithAttributes(attribute.String("label", job.Label)))
			r.logger.Debug("sweep job complete", "worker", workerID, "label", job.Label)
		}
		r.reportProgress()
	}
}

// reportProgress serializes the callback so consumers need no locking.
func (r *Runner) reportProgress() {
	if r.progress == nil {
		return
	}
	r.progressMu.Lock()
	r.doneCount++
	done, total := r.doneCount, r.totalJobs
	r.progress(done, total)
	r.progressMu.Unlock()
}

func (r *Runner) compute(ctx context.Context, job Job) Result {
	trace, err := cycle.Run(r.sampleCount, job.Params)
	if err != nil {
		return Result{Job: job, Err: fmt.Errorf("computing %s: %w", job.Label, err)}
	}

	result := Result{Job: job, Trace: trace}

	if r.backend != nil {
		run, err := model.FromTrace(job.Label, r.preset, r.rpm, trace)
		if err != nil {
			result.Err = fmt.Errorf("encoding %s: %w", job.Label, err)
			return result
		}
		if err := r.backend.StartRun(run); err != nil {
			result.Err = fmt.Errorf("storing %s: %w", job.Label, err)
			return result
		}
		if err := r.backend.EndRun(run.ID); err != nil {
			result.Err = fmt.Errorf("finishing %s: %w", job.Label, err)
			return result
		}
		result.RunID = run.ID
	}

	return result
}

// CompressionRatioJobs builds a sweep over compression ratios, holding every
// other parameter at base.
func CompressionRatioJobs(base cycle.Parameters, ratios []float64, labelPrefix string) []Job {
	jobs := make([]Job, len(ratios))
	for i, ratio := range ratios {
		params := base
		params.CompressionRatio = ratio
		jobs[i] = Job{
			Index:  i,
			Label:  fmt.Sprintf("%s_cr%.2f", labelPrefix, ratio),
			Params: params,
		}
	}
	return jobs
}

// PeakTempJobs builds a sweep over peak temperature caps, holding every other
// parameter at base.
func PeakTempJobs(base cycle.Parameters, peaksK []float64, labelPrefix string) []Job {
	jobs := make([]Job, len(peaksK))
	for i, peak := range peaksK {
		params := base
		params.PeakTempK = peak
		jobs[i] = Job{
			Index:  i,
			Label:  fmt.Sprintf("%s_peak%.0fK", labelPrefix, peak),
			Params: params,
		}
	}
	return jobs
}
