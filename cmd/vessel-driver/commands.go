package main

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-vessel/internal/config"
	"github.com/askiada/go-vessel/internal/driver"
	"github.com/askiada/go-vessel/internal/ledger"
	"github.com/askiada/go-vessel/pkg/pipeline/drawer"
	"github.com/askiada/go-vessel/pkg/pipeline/measure"
	"github.com/askiada/go-vessel/pkg/pipeline/model"
	"github.com/askiada/go-vessel/pkg/vessel"
)

var errLedgerNotConfigured = errors.New("VESSEL_LEDGER_DB is not set")

// argError marks command line errors detected by cobra.
type argError struct {
	err error
}

func (e *argError) Error() string {
	return e.err.Error()
}

func (e *argError) Unwrap() error {
	return e.err
}

type cli struct {
	cfg    *config.Config
	logger *slog.Logger
	runner vessel.Runner
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           driver.DefaultProgram,
		Short:         "Run the retinal vessel segmentation pipelines",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver.PrintUsage(cmd.OutOrStdout(), cmd.Root().Name())
			return nil
		},
	}
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		driver.PrintUsage(cmd.OutOrStdout(), cmd.Root().Name())
	})
	// an unrecognized first argument is not an error, it only prints the usage
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, _ error) error {
		driver.PrintUsage(cmd.OutOrStdout(), cmd.Root().Name())
		return nil
	})

	for _, mode := range driver.Modes() {
		rootCmd.AddCommand(c.newModeCmd(mode))
	}
	rootCmd.AddCommand(c.newHistoryCmd())

	return rootCmd
}

// newModeCmd passes every argument through untouched, so paths starting with a dash stay positional.
func (c *cli) newModeCmd(mode string) *cobra.Command {
	return &cobra.Command{
		Use:                mode + " " + driver.ModeUsage(mode),
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && isHelpArg(args[0]) {
				return cmd.Help()
			}

			return c.runMode(cmd, mode, args)
		},
	}
}

func isHelpArg(arg string) bool {
	return arg == "-h" || arg == "--help"
}

// runMode runs one pipeline mode with the run ledger, stage metrics and graph wired in.
func (c *cli) runMode(cmd *cobra.Command, mode string, args []string) error {
	logger := c.logger
	msr := measure.NewDefaultMeasure()
	opts := []model.PipelineOption{measure.PipelineMeasure(msr)}
	if c.cfg.GraphFile != "" {
		opts = append(opts, drawer.PipelineDrawer(drawer.NewDOTDrawer(c.cfg.GraphFile), msr))
	}

	var (
		runs *ledger.Ledger
		run  *ledger.Run
	)
	if c.cfg.LedgerDB != "" {
		var err error
		runs, err = ledger.Open(c.cfg.LedgerDB)
		if err != nil {
			return errors.Wrapf(err, "unable to open ledger %s", c.cfg.LedgerDB)
		}
		defer runs.Close()

		run, err = runs.Begin(mode, args)
		if err != nil {
			return errors.Wrap(err, "unable to record run")
		}
		logger = logger.With("run_id", run.ID)
	}

	drv, err := driver.New(c.runner, c.cfg,
		driver.WithStdout(cmd.OutOrStdout()),
		driver.WithLogger(logger),
		driver.WithProgram(cmd.Root().Name()),
		driver.WithPipelineOptions(opts...),
		driver.WithProtectedFiles(c.cfg.LedgerDB, c.cfg.GraphFile, c.cfg.LogFile),
	)
	if err != nil {
		return err
	}

	runErr := drv.Run(cmd.Context(), mode, args)

	if runs != nil {
		if err := runs.Finish(run, runErr, msr); err != nil {
			logger.Error("unable to record run result", "error", err)
		}
	}

	return runErr
}

func (c *cli) newHistoryCmd() *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recent runs recorded in the ledger, or the stages of one run",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &argError{err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.LedgerDB == "" {
				return errLedgerNotConfigured
			}

			runs, err := ledger.Open(c.cfg.LedgerDB)
			if err != nil {
				return errors.Wrapf(err, "unable to open ledger %s", c.cfg.LedgerDB)
			}
			defer runs.Close()

			if runID != "" {
				return printStages(cmd, runs, runID)
			}

			recent, err := runs.Recent(limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tMODE\tSTATUS\tSTARTED\tDURATION\tARGS")
			for _, r := range recent {
				duration := "-"
				if !r.FinishedAt.IsZero() {
					duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Mode, r.Status, r.StartedAt.Local().Format(time.DateTime), duration, strings.Join(r.Args, " "))
			}

			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "list the stage timings of this run")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &argError{err: err}
	})

	return cmd
}

func printStages(cmd *cobra.Command, runs *ledger.Ledger, runID string) error {
	stages, err := runs.Stages(runID)
	if err != nil {
		return err
	}
	if len(stages) == 0 {
		return errors.Errorf("no stages recorded for run %s", runID)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tCALLS\tFAILURES\tAVG\tTOTAL")
	for _, s := range stages {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			s.Name, s.Calls, s.Failures, s.Average.Round(time.Microsecond), s.Total.Round(time.Microsecond))
	}

	return w.Flush()
}
