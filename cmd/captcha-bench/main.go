// Command captcha-bench measures the solver offline against a labelled
// directory and online against a live challenge page.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ironsheep/captcha-tools-mcp/internal/bench"
	"github.com/ironsheep/captcha-tools-mcp/internal/challenge"
	"github.com/ironsheep/captcha-tools-mcp/internal/config"
	"github.com/ironsheep/captcha-tools-mcp/internal/corpus"
	"github.com/ironsheep/captcha-tools-mcp/internal/logging"
	"github.com/ironsheep/captcha-tools-mcp/internal/solver"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const envConfigPath = "CAPTCHA_MCP_CONFIG"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "captcha-bench: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printHelp(stderr)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "captcha-bench %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return nil
	case "--help", "-h", "help":
		printHelp(stdout)
		return nil
	case "precision", "download", "live":
	default:
		printHelp(stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}

	fs := flag.NewFlagSet("captcha-bench "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv(envConfigPath), "path to a YAML config file")
	defaultN := 0
	if cmd == "download" {
		defaultN = 100
	}
	n := fs.Int("n", defaultN, "number of challenges (live: 0 runs until interrupted)")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	cfg, err := config.Resolve(*configPath, os.Getenv)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	switch cmd {
	case "precision":
		if fs.NArg() != 1 {
			return errors.New("usage: captcha-bench precision <dir>")
		}
		slv, err := newSolver(cfg, logger)
		if err != nil {
			return err
		}
		report, err := bench.RunPrecision(ctx, slv, fs.Arg(0), logger)
		if err != nil {
			return err
		}
		report.Write(stdout)
		return nil

	case "download":
		if fs.NArg() != 1 {
			return errors.New("usage: captcha-bench download [-n 100] <dir>")
		}
		runner, err := newRunner(cfg, nil, logger)
		if err != nil {
			return err
		}
		paths, err := runner.Download(ctx, fs.Arg(0), *n)
		fmt.Fprintf(stdout, "Downloaded %d images into %s\n", len(paths), fs.Arg(0))
		return err

	default: // live
		slv, err := newSolver(cfg, logger)
		if err != nil {
			return err
		}
		runner, err := newRunner(cfg, slv, logger)
		if err != nil {
			return err
		}
		stats, err := runner.RunLive(ctx, *n, func(s bench.LiveStats) {
			fmt.Fprintln(stdout, s.String())
		})
		fmt.Fprintln(stdout, stats.String())
		return err
	}
}

func newSolver(cfg *config.Config, logger *zap.Logger) (*solver.Solver, error) {
	if cfg.DatasetPath == "" {
		return solver.NewDefault(solver.WithLogger(logger))
	}
	store, err := corpus.Open(cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	return solver.New(store, solver.WithLogger(logger))
}

func newRunner(cfg *config.Config, r bench.Resolver, logger *zap.Logger) (*bench.Runner, error) {
	client, err := challenge.NewClient(cfg.Challenge, challenge.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &bench.Runner{
		Client:   client,
		Resolver: r,
		Retry:    bench.DefaultRetryPolicy,
		Logger:   logger,
	}, nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "captcha-bench - offline and live accuracy checks for the CAPTCHA solver")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  captcha-bench precision <dir>        Solve every labelled image in dir")
	fmt.Fprintln(w, "  captcha-bench download [-n N] <dir>  Save N challenge images (default 100)")
	fmt.Fprintln(w, "  captcha-bench live [-n N]            Solve and submit N challenges (0 = until interrupted)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common options:")
	fmt.Fprintln(w, "  --config PATH   YAML config file (or CAPTCHA_MCP_CONFIG)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Labelled images are named after their answer, e.g. aatmag.jpg.")
	fmt.Fprintln(w, "Progress is printed every", bench.ProgressInterval, "live attempts.")
}
