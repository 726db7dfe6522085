// Command vessel-driver runs the retinal vessel segmentation pipelines of the vessel tool.
// Each subcommand is one pipeline mode. Configuration comes from VESSEL_* environment
// variables and an optional .env file in the current directory.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/askiada/go-vessel/internal/config"
	"github.com/askiada/go-vessel/internal/driver"
	"github.com/askiada/go-vessel/internal/logging"
	"github.com/askiada/go-vessel/pkg/vessel"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
// A nil runner spawns the configured vessel binary.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, runner vessel.Runner) int {
	cfg, err := config.Load()
	if err != nil {
		_, _ = io.WriteString(stderr, "config load failed: "+err.Error()+"\n")
		return 1
	}

	logger, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile, stderr)
	if err != nil {
		_, _ = io.WriteString(stderr, "logger setup failed: "+err.Error()+"\n")
		return 1
	}
	defer func() { _ = closeLog() }()

	logger.Debug("config loaded",
		"binary", cfg.Binary,
		"share_dir", cfg.ShareDir,
		"work_dir", cfg.WorkDir,
		"strict", cfg.Strict,
		"keep_on_failure", cfg.KeepOnFailure,
		"scale_jobs", cfg.ScaleJobs,
		"ledger_db", cfg.LedgerDB,
		"graph_file", cfg.GraphFile,
	)

	if runner == nil {
		runner = vessel.NewExecRunner(cfg.Binary, cfg.WorkDir)
	}

	rootCmd := newRootCmd(&cli{cfg: cfg, logger: logger, runner: runner})
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err = rootCmd.ExecuteContext(ctx)

	return exitCode(logger, err)
}

func exitCode(logger *slog.Logger, err error) int {
	if err == nil {
		return 0
	}

	var usageErr *driver.UsageError
	var argErr *argError
	if errors.As(err, &usageErr) || errors.As(err, &argErr) {
		logger.Error("invalid arguments", "error", err)
		return 2
	}

	logger.Error("run failed", "error", err)

	return 1
}
