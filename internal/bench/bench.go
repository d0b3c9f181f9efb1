// Package bench plans batches of random scenarios concurrently and records
// the outcomes.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/qwertyBBeers/motion-planning/grid"
	"github.com/qwertyBBeers/motion-planning/internal/runstore"
	"github.com/qwertyBBeers/motion-planning/planner"
	"github.com/qwertyBBeers/motion-planning/worldgen"
)

// Recorder persists finished runs. *runstore.Store implements it.
type Recorder interface {
	Insert(ctx context.Context, r runstore.Run) error
}

var _ Recorder = (*runstore.Store)(nil)

// Runner executes batches. Run i of a batch uses seed Seed+i, so a batch is
// reproducible from its base seed.
type Runner struct {
	generator worldgen.RandomWorld
	planner   *planner.AStar
	runs      int
	workers   int
	timeout   time.Duration
	seed      uint64
	recorder  Recorder
	logger    *zap.Logger
}

type Option func(*Runner)

func WithRuns(n int) Option { return func(r *Runner) { r.runs = n } }

// WithWorkers bounds the number of concurrent plans.
func WithWorkers(n int) Option { return func(r *Runner) { r.workers = n } }

// WithTimeout bounds each plan; 0 disables the limit. A run that hits its
// timeout is recorded as failed with its error set.
func WithTimeout(d time.Duration) Option { return func(r *Runner) { r.timeout = d } }

func WithSeed(seed uint64) Option { return func(r *Runner) { r.seed = seed } }

func WithRecorder(rec Recorder) Option { return func(r *Runner) { r.recorder = rec } }

func WithLogger(logger *zap.Logger) Option { return func(r *Runner) { r.logger = logger } }

func New(gen worldgen.RandomWorld, p *planner.AStar, opts ...Option) *Runner {
	r := &Runner{
		generator: gen,
		planner:   p,
		runs:      10,
		workers:   1,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.workers < 1 {
		r.workers = 1
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Batch is the outcome of one Run call.
type Batch struct {
	ID      string
	Runs    []runstore.Run
	Summary runstore.Summary
}

// Run plans every scenario of a new batch. Runs are returned in seed order.
// It fails when ctx ends, when the generator cannot build a world, or when
// the recorder returns an error.
func (r *Runner) Run(ctx context.Context) (Batch, error) {
	batch := Batch{ID: uuid.NewString(), Runs: make([]runstore.Run, r.runs)}
	log := r.logger.With(zap.String("batch_id", batch.ID))
	log.Info("bench started",
		zap.Int("runs", r.runs),
		zap.Int("workers", r.workers),
		zap.Float64("resolution", r.planner.Resolution()),
		zap.Duration("timeout", r.timeout))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range r.runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run, err := r.runOne(gctx, batch.ID, r.seed+uint64(i))
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			batch.Runs[i] = run
			log.Debug("run finished",
				zap.String("run_id", run.ID),
				zap.Uint64("seed", run.Seed),
				zap.Bool("success", run.Success),
				zap.Int("iterations", run.Iterations),
				zap.Duration("duration", run.Duration))
			if r.recorder == nil {
				return nil
			}
			if err := r.recorder.Insert(gctx, run); err != nil {
				return fmt.Errorf("record run %s: %w", run.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	batch.Summary = runstore.Aggregate(batch.Runs)
	log.Info("bench finished",
		zap.Int("successes", batch.Summary.Successes),
		zap.Float64("mean_iterations", batch.Summary.MeanIterations),
		zap.Float64("mean_cost", batch.Summary.MeanCost),
		zap.Duration("mean_duration", batch.Summary.MeanDuration))
	return batch, nil
}

func (r *Runner) runOne(ctx context.Context, batchID string, seed uint64) (runstore.Run, error) {
	src := worldgen.NewSource(seed)
	w, err := r.generator.Generate(src)
	if err != nil {
		return runstore.Run{}, fmt.Errorf("seed %d: %w", seed, err)
	}
	start, goal := r.generator.SampleLineSegment(w, src)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	began := time.Now()
	res, err := r.planner.PlanContext(ctx, w, start, goal)
	run := runstore.Run{
		ID:          uuid.NewString(),
		BatchID:     batchID,
		Fingerprint: w.Fingerprint(),
		Seed:        seed,
		Resolution:  r.planner.Resolution(),
		Diagonal:    r.planner.Connectivity() == grid.Conn26,
		Success:     res.Success,
		Iterations:  res.Iterations,
		Visited:     len(res.Visited),
		PathPoints:  len(res.Path),
		Cost:        res.Cost,
		Duration:    time.Since(began),
		CreatedAt:   began,
	}
	if err != nil {
		run.Error = err.Error()
	}
	return run, nil
}
