package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/qwertyBBeers/motion-planning/internal/bench"
	"github.com/qwertyBBeers/motion-planning/internal/config"
	"github.com/qwertyBBeers/motion-planning/internal/logging"
	"github.com/qwertyBBeers/motion-planning/internal/runstore"
	"github.com/qwertyBBeers/motion-planning/visualize"
)

const version = "0.1.0"

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "plan":
		err = runPlan(ctx, args, os.Stdout)
	case "bench":
		err = runBench(ctx, args, os.Stdout)
	case "version":
		fmt.Printf("motionplan version %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`motionplan - 3D grid A* motion planning

Usage: motionplan <command> [options]

Commands:
  plan       Plan one scenario and optionally render it
  bench      Plan a batch of random scenarios and summarise them
  version    Show motionplan version
  help       Show this help message

Scenarios are read from --config (YAML or JSON). Without a config file a
seeded random 10x10x10 world is used. Command-line flags override the file.

Examples:
  motionplan plan --seed 3 --diagonal --html plan.html --png plan.png --view top
  motionplan plan --config scenario.yaml
  motionplan bench --runs 100 --workers 8 --timeout 2s --db runs.db`)
}

// commonFlags are shared by every subcommand that builds a scenario.
type commonFlags struct {
	configPath *string
	seed       *uint64
	resolution *float64
	diagonal   *bool
	maxIter    *int
	logLevel   *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", "", "Scenario file (.yaml, .yml or .json)"),
		seed:       fs.Uint64("seed", 1, "Seed of the random world"),
		resolution: fs.Float64("resolution", 0.5, "Lattice cell size"),
		diagonal:   fs.Bool("diagonal", false, "Use 26-connectivity instead of 6"),
		maxIter:    fs.Int("max-iterations", 0, "Expansion budget per plan (0 = unbounded)"),
		logLevel:   fs.String("log-level", "info", "Log level (debug, info, warn, error)"),
	}
}

// load reads the config file, if any, and applies the flags that were set
// explicitly on the command line.
func (c commonFlags) load(fs *flag.FlagSet, apply func(cfg *config.Config, name string)) (*config.Config, error) {
	cfg := config.Default()
	if *c.configPath != "" {
		var err error
		if cfg, err = config.Load(*c.configPath); err != nil {
			return nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Random.Seed = *c.seed
		case "resolution":
			cfg.Planner.Resolution = *c.resolution
		case "diagonal":
			cfg.Planner.AllowDiagonal = *c.diagonal
		case "max-iterations":
			cfg.Planner.MaxIterations = *c.maxIter
		case "log-level":
			cfg.LogLevel = *c.logLevel
		default:
			if apply != nil {
				apply(cfg, f.Name)
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPlan(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	common := addCommonFlags(fs)
	htmlPath := fs.String("html", "", "Write an interactive 3D page to this file")
	pngPath := fs.String("png", "", "Write a static projection to this file")
	view := fs.String("view", "iso", "Projection for --png (top, front, side, iso)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load(fs, func(cfg *config.Config, name string) {
		switch name {
		case "html":
			cfg.Output.HTML = *htmlPath
		case "png":
			cfg.Output.PNG = *pngPath
		case "view":
			cfg.Output.View = *view
		}
	})
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	w, start, goal, err := cfg.Scenario(cfg.Source())
	if err != nil {
		return err
	}
	logger.Info("scenario ready",
		zap.Uint64("seed", cfg.Random.Seed),
		zap.Int("obstacles", w.NumObstacles()),
		zap.String("fingerprint", fmt.Sprintf("%016x", w.Fingerprint())),
		logging.Point("start", start),
		logging.Point("goal", goal))

	began := time.Now()
	res, err := cfg.NewPlanner(logger).PlanContext(ctx, w, start, goal)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	logger.Info("plan finished",
		zap.Bool("success", res.Success),
		zap.Int("iterations", res.Iterations),
		zap.Duration("duration", time.Since(began)))

	fmt.Fprintf(stdout, "success:    %t\n", res.Success)
	fmt.Fprintf(stdout, "iterations: %d\n", res.Iterations)
	fmt.Fprintf(stdout, "path:       %d points\n", len(res.Path))
	fmt.Fprintf(stdout, "cost:       %.4f\n", res.Cost)

	scene := visualize.SceneOf(start, goal, res)
	scene.Title = fmt.Sprintf("seed %d", cfg.Random.Seed)
	if cfg.World != nil {
		scene.Title = "scenario"
	}
	if cfg.Output.HTML != "" {
		if err := writeFile(cfg.Output.HTML, func(out io.Writer) error {
			return visualize.HTML(out, w, scene)
		}); err != nil {
			return err
		}
		logger.Info("wrote html", zap.String("path", cfg.Output.HTML))
	}
	if cfg.Output.PNG != "" {
		if err := visualize.SavePNG(cfg.Output.PNG, w, scene, cfg.View()); err != nil {
			return err
		}
		logger.Info("wrote png", zap.String("path", cfg.Output.PNG), zap.Stringer("view", cfg.View()))
	}
	return nil
}

func runBench(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	common := addCommonFlags(fs)
	runs := fs.Int("runs", 20, "Number of scenarios")
	workers := fs.Int("workers", 4, "Concurrent plans")
	timeout := fs.Duration("timeout", 10*time.Second, "Per-plan timeout (0 = none)")
	dbPath := fs.String("db", "", "SQLite file to record runs to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load(fs, func(cfg *config.Config, name string) {
		switch name {
		case "runs":
			cfg.Bench.Runs = *runs
		case "workers":
			cfg.Bench.Workers = *workers
		case "timeout":
			cfg.Bench.Timeout = timeout.String()
		case "db":
			cfg.Bench.Database = *dbPath
		}
	})
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	perRun, err := cfg.Timeout()
	if err != nil {
		return err
	}
	opts := []bench.Option{
		bench.WithRuns(cfg.Bench.Runs),
		bench.WithWorkers(cfg.Bench.Workers),
		bench.WithTimeout(perRun),
		bench.WithSeed(cfg.Random.Seed),
		bench.WithLogger(logger),
	}
	if cfg.Bench.Database != "" {
		store, err := runstore.Open(cfg.Bench.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, bench.WithRecorder(store))
	}

	batch, err := bench.New(cfg.Random.RandomWorld, cfg.NewPlanner(logger), opts...).Run(ctx)
	if err != nil {
		return err
	}

	s := batch.Summary
	fmt.Fprintf(stdout, "batch:           %s\n", batch.ID)
	fmt.Fprintf(stdout, "runs:            %d\n", s.Runs)
	fmt.Fprintf(stdout, "success rate:    %.1f%%\n", 100*s.SuccessRate())
	fmt.Fprintf(stdout, "mean iterations: %.1f\n", s.MeanIterations)
	fmt.Fprintf(stdout, "mean cost:       %.4f\n", s.MeanCost)
	fmt.Fprintf(stdout, "mean duration:   %s\n", s.MeanDuration)
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()
	return write(f)
}
