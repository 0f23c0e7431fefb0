// Package runner partitions scan work into independent jobs and runs them on
// a bounded worker pool.
package runner

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/crispr-scan/internal/crispr"
	"github.com/inodb/crispr-scan/internal/sequence"
)

// DefaultWorkers runs one job per strand orientation at a time.
const DefaultWorkers = 2

// Job is one (record, strand) scan.
type Job struct {
	Seq    int
	Record sequence.Record
	Strand crispr.Strand
}

// Result holds the sites found by a single job.
type Result struct {
	Seq int
	crispr.Result
	Elapsed time.Duration
}

// Partition expands records into jobs, record-major then strand order.
// Jobs for the same record share its buffer read-only.
func Partition(records []sequence.Record, strands []crispr.Strand) []Job {
	jobs := make([]Job, 0, len(records)*len(strands))
	for _, rec := range records {
		for _, s := range strands {
			jobs = append(jobs, Job{Seq: len(jobs), Record: rec, Strand: s})
		}
	}
	return jobs
}

// Runner scans jobs concurrently.
type Runner struct {
	scanner *crispr.Scanner
	workers int
	logger  *zap.Logger
}

// New creates a runner. If workers is 0, runtime.NumCPU() is used.
func New(scanner *crispr.Scanner, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		scanner: scanner,
		workers: workers,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for progress messages.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Workers returns the pool size.
func (r *Runner) Workers() int {
	return r.workers
}

// Scan runs a single job synchronously.
func (r *Runner) Scan(job Job) Result {
	start := time.Now()
	res := r.scanner.ScanRecord(job.Record.ID, job.Record.Seq, job.Strand)
	return Result{Seq: job.Seq, Result: res, Elapsed: time.Since(start)}
}

// ParallelScan scans jobs using the worker pool.
// Results are sent to the returned channel in completion order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// No new job is started once ctx is done.
func (r *Runner) ParallelScan(ctx context.Context, jobs []Job) <-chan Result {
	results := make(chan Result, 2*r.workers)

	go func() {
		defer close(results)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)

		for _, job := range jobs {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				res := r.Scan(job)
				r.logger.Debug("scanned",
					zap.String("record", res.RecordID),
					zap.Stringer("strand", res.Strand),
					zap.Int("sites", len(res.Sites)),
					zap.Duration("elapsed", res.Elapsed))
				select {
				case results <- res:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		_ = g.Wait()
	}()

	return results
}

// Run scans all jobs and calls fn for each result in job order. It returns
// only after every callback has completed.
func (r *Runner) Run(ctx context.Context, jobs []Job, fn func(Result) error) error {
	start := time.Now()

	if err := OrderedCollect(r.ParallelScan(ctx, jobs), fn); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.logger.Info("scan complete",
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", r.workers),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan Result, fn func(Result) error) error {
	pending := make(map[int]Result)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
