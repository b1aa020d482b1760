package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/gridwalk-simulator/core"
	"github.com/signalsfoundry/gridwalk-simulator/internal/display"
	"github.com/signalsfoundry/gridwalk-simulator/internal/logging"
	"github.com/signalsfoundry/gridwalk-simulator/internal/observability"
	"github.com/signalsfoundry/gridwalk-simulator/internal/opsserver"
	"github.com/signalsfoundry/gridwalk-simulator/timectrl"
	"golang.org/x/sync/errgroup"
)

// Config holds everything the simulator reads from the command line.
type Config struct {
	Tick         time.Duration
	MaxTicks     uint64
	Seed         int64
	ScenarioPath string
	Clear        bool
	MetricsAddr  string

	LogLevel  string
	LogFormat string
	LogFile   string
}

func parseFlags(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	fs.DurationVar(&cfg.Tick, "tick", 0, "wall-clock pause between ticks; 0 runs ticks back to back")
	fs.Uint64Var(&cfg.MaxTicks, "max-ticks", 0, "stop after this many ticks; 0 runs until interrupted")
	fs.Int64Var(&cfg.Seed, "seed", 0, "random seed; 0 seeds from the clock")
	fs.StringVar(&cfg.ScenarioPath, "scenario", "", "YAML scenario file; empty uses the built-in three entities")
	fs.BoolVar(&cfg.Clear, "clear", false, "clear the screen before every frame instead of leaving trails")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "HTTP address for /metrics and /healthz; empty disables")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", envOr("LOG_FORMAT", "text"), "text or json")
	fs.StringVar(&cfg.LogFile, "log-file", os.Getenv("LOG_FILE"), "rotating log file; empty logs to stderr")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Tick < 0 {
		return Config{}, fmt.Errorf("-tick must not be negative, got %s", cfg.Tick)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Stdout); err != nil {
		log.Error(context.Background(), "simulator exited", logging.Err(err))
		os.Exit(1)
	}
}

// run wires the scene, renderer, metrics and driver and blocks until the
// driver stops.
func run(ctx context.Context, cfg Config, log logging.Logger, out io.Writer) error {
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewSceneCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	scene := core.NewScene(
		rand.New(rand.NewSource(seed)),
		core.WithLogger(log),
		core.WithTickObserver(collector.ObserveTick),
	)

	var scenario *core.Scenario
	if cfg.ScenarioPath != "" {
		scenario, err = core.LoadScenarioFile(scene, cfg.ScenarioPath)
	} else {
		scenario, err = core.DefaultScenario(scene)
	}
	if err != nil {
		return err
	}
	log.Info(ctx, "scene ready",
		logging.Int("entities", len(scenario.Names)),
		logging.Any("seed", seed),
		logging.String("scenario", cfg.ScenarioPath),
	)

	term := display.NewTerminal(out, cfg.Clear)
	defer func() {
		if err := term.Close(); err != nil {
			log.Warn(context.Background(), "terminal output failed", logging.Err(err))
		}
	}()
	display.NewRenderer(scene, term, log).Attach()

	mode := timectrl.Accelerated
	if cfg.Tick > 0 {
		mode = timectrl.RealTime
	}
	driver := timectrl.NewDriver(collector.Instrument(scene), cfg.Tick, mode)
	driver.MaxTicks = cfg.MaxTicks

	extinct := false
	driver.AddListener(func(r core.TickReport) {
		if r.Alive == 0 && !extinct {
			extinct = true
			log.Info(ctx, "no entities left alive", logging.Uint64("tick", r.Tick))
		}
	})

	var lis net.Listener
	if cfg.MetricsAddr != "" {
		lis, err = net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.MetricsAddr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stopOps := context.WithCancel(gctx)
	defer stopOps()

	log.Info(ctx, "starting simulation",
		logging.String("mode", mode.String()),
		logging.String("tick", cfg.Tick.String()),
	)
	g.Go(func() error {
		defer stopOps()
		err := driver.Run(runCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if lis != nil {
		g.Go(func() error {
			return opsserver.Serve(runCtx, lis, opsserver.NewRouter(collector.Handler(), driver), log)
		})
	}

	err = g.Wait()
	log.Info(context.Background(), "simulation stopped",
		logging.String("ticks", humanize.Comma(int64(driver.Ticks()))),
		logging.Int("alive", len(scene.AliveEntities())),
	)
	return err
}
