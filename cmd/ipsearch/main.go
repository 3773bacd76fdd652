// Command ipsearch finds the IPv4 address whose dotted-decimal text hashes to
// a given SHA-256 digest by searching the address space in parallel.
//
//	ipsearch [flags] <sha256-hex>
//	ipsearch status [-addr host:port]
//
// Exit status: 0 when an address is found, 1 when the range holds no
// preimage, 2 for invalid input, 3 when a worker faulted and 130 when
// interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dreamware/ipsearch/internal/config"
	"github.com/dreamware/ipsearch/internal/digest"
	"github.com/dreamware/ipsearch/internal/logging"
	"github.com/dreamware/ipsearch/internal/metrics"
	"github.com/dreamware/ipsearch/internal/progress"
	"github.com/dreamware/ipsearch/internal/search"
	"github.com/dreamware/ipsearch/internal/status"
)

const (
	exitOK          = 0
	exitFound       = 0
	exitNotFound    = 1
	exitUsage       = 2
	exitFault       = 3
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	if len(args) > 0 && args[0] == "status" {
		return runStatus(ctx, args[1:], stdout, stderr, getenv)
	}

	cfg, rest, err := config.Load(args, getenv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "ipsearch:", err)
		return exitUsage
	}
	if len(rest) != 1 {
		fmt.Fprintln(stderr, "usage: ipsearch [flags] <sha256-hex>")
		return exitUsage
	}
	target, err := digest.ParseHex(rest[0])
	if err != nil {
		fmt.Fprintln(stderr, "ipsearch:", err)
		return exitUsage
	}
	rng, err := cfg.Range()
	if err != nil {
		fmt.Fprintln(stderr, "ipsearch:", err)
		return exitUsage
	}

	logger, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(stderr, "ipsearch:", err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()

	if cfg.NoGC {
		prevGC := debug.SetGCPercent(-1)
		prevLimit := debug.SetMemoryLimit(1 << 30)
		defer func() {
			debug.SetGCPercent(prevGC)
			debug.SetMemoryLimit(prevLimit)
		}()
	}

	workers := search.NewRegistry()
	promReg := prometheus.NewRegistry()
	opts := []search.Option{
		search.WithLogger(logger),
		search.WithRegistry(workers),
		search.WithReporter(metrics.New(promReg, workers)),
	}
	var line *progress.LineReporter
	if !cfg.Quiet {
		if f, ok := stderr.(*os.File); ok {
			line = progress.NewLineReporter(f)
		} else {
			line = progress.NewWriterReporter(stderr, false)
		}
		opts = append(opts, search.WithReporter(line))
	}

	coord, err := search.NewCoordinator(search.Config{
		Target:           target,
		Range:            rng,
		Workers:          cfg.EffectiveWorkers(),
		BatchSize:        cfg.BatchSize,
		ProgressInterval: cfg.Interval,
	}, opts...)
	if err != nil {
		fmt.Fprintln(stderr, "ipsearch:", err)
		return exitUsage
	}

	if cfg.StatusAddr != "" {
		srv := status.NewServer(cfg.StatusAddr, coord, promReg, logger)
		if err := srv.Start(); err != nil {
			logger.Error("status server", zap.Error(err))
			return exitUsage
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	fmt.Fprintf(stdout, "Searching for: %s\n", target)
	res, err := coord.Run(ctx)
	if line != nil {
		_ = line.Close()
	}

	switch {
	case errors.Is(err, search.ErrWorkerFault):
		fmt.Fprintln(stderr, "ipsearch:", err)
		return exitFault
	case errors.Is(err, search.ErrAborted):
		fmt.Fprintln(stderr, "ipsearch: interrupted")
		return exitInterrupted
	case err != nil:
		fmt.Fprintln(stderr, "ipsearch:", err)
		return exitFault
	case res.Found:
		fmt.Fprintf(stdout, "Found! IP: %s\n", res.Candidate)
		fmt.Fprintf(stdout, "Elapsed: %s\n", res.Elapsed.Round(time.Millisecond))
		return exitFound
	default:
		fmt.Fprintf(stdout, "No address in %s hashes to %s\n", rng, target)
		fmt.Fprintf(stdout, "Elapsed: %s\n", res.Elapsed.Round(time.Millisecond))
		return exitNotFound
	}
}

func runStatus(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("ipsearch status", flag.ContinueOnError)
	fs.SetOutput(stderr)
	def := getenv("IPSEARCH_STATUS_ADDR")
	if def == "" {
		def = "localhost:9100"
	}
	addr := fs.String("addr", def, "status server of a running search")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := status.FetchProgress(ctx, *addr)
	if err != nil {
		fmt.Fprintln(stderr, "ipsearch status:", err)
		return exitFault
	}
	fmt.Fprintf(stdout, "run %s: %s\n", p.RunID, progress.FormatLine(p.Snapshot))
	return exitOK
}
