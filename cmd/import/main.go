package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	repository "github.com/okian/studybuddy/internal/adapters/repository"
	"github.com/okian/studybuddy/internal/config"
	"github.com/okian/studybuddy/internal/importer"
	"github.com/okian/studybuddy/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 30 * time.Minute
)

const usage = `Study Buddy CSV Import
=====================

Loads student registrations from a CSV export. Without -url the rows are
written to the store configured by STUDYBUDDY_DB_DRIVER and STUDYBUDDY_DB_DSN,
keeping the student_id column. With -url they are posted to a running service,
which assigns fresh ids.

Usage:
  go run ./cmd/import -file students.csv [options]

Options:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Stderr.WriteString("import failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(out)
	var (
		path    = fs.String("file", "", "CSV file to import (required, - for stdin)")
		baseURL = fs.String("url", "", "Base URL of a running service; empty writes to the configured store")
		workers = fs.Int("workers", runtime.NumCPU(), "Number of rows submitted concurrently")
		timeout = fs.Duration("timeout", defaultTimeout, "HTTP request timeout when -url is set")
	)
	fs.Usage = func() {
		_, _ = io.WriteString(out, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		fs.Usage()
		return errors.New("-file is required")
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Named("import")

	src, closeSrc, err := openSource(*path)
	if err != nil {
		return err
	}
	defer closeSrc()

	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	var sink importer.Sink
	if *baseURL != "" {
		sink = importer.NewHTTPSink(*baseURL, *timeout)
	} else {
		store, err := repository.Open(ctx, cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		if closer, ok := store.(io.Closer); ok {
			defer closer.Close()
		}
		if cfg.DBDriver == config.DriverMemory {
			log.Warn(ctx, "importing into the memory store; rows are dropped on exit")
		}
		sink = importer.NewStoreSink(store)
	}

	stats, err := importer.New(sink, importer.WithWorkers(*workers), importer.WithLogger(log)).Run(ctx, src)
	log.Info(ctx, "import finished",
		logger.String("file", *path),
		logger.Int("rows", stats.Rows),
		logger.Int("inserted", stats.Inserted),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "rows=%d inserted=%d failed=%d\n", stats.Rows, stats.Inserted, stats.Failed)
	for _, rowErr := range stats.Errors {
		fmt.Fprintf(out, "  %s\n", rowErr.Error())
	}
	return nil
}

func openSource(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
