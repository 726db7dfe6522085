package driver

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/askiada/go-vessel/internal/config"
	"github.com/askiada/go-vessel/internal/logging"
	"github.com/askiada/go-vessel/pkg/pipeline"
	"github.com/askiada/go-vessel/pkg/pipeline/model"
	"github.com/askiada/go-vessel/pkg/vessel"
)

// DefaultProgram is the program name printed in the usage text.
const DefaultProgram = "vessel-driver"

// Driver maps a command line mode to a pipeline of external tool invocations.
type Driver struct {
	runner vessel.Runner

	binary        string
	shareDir      string
	workDir       string
	strict        bool
	keepOnFailure bool
	scaleJobs     int

	program   string
	stdout    io.Writer
	logger    *slog.Logger
	pipeOpts  []model.PipelineOption
	protected []string
}

type Option func(d *Driver)

// WithStdout sets where the usage text and the computed scale are printed.
func WithStdout(w io.Writer) Option {
	return func(d *Driver) {
		d.stdout = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithProgram sets the program name of the usage text.
func WithProgram(program string) Option {
	return func(d *Driver) {
		d.program = program
	}
}

// WithPipelineOptions adds hooks to every pipeline the driver runs.
func WithPipelineOptions(opts ...model.PipelineOption) Option {
	return func(d *Driver) {
		d.pipeOpts = append(d.pipeOpts, opts...)
	}
}

// WithProtectedFiles keeps paths, their sidecar files and their rotated backups from being removed by the cleanup.
func WithProtectedFiles(paths ...string) Option {
	return func(d *Driver) {
		for _, p := range paths {
			if p != "" {
				d.protected = append(d.protected, p)
			}
		}
	}
}

// New creates a driver running the tool through runner with the settings of cfg.
func New(runner vessel.Runner, cfg *config.Config, opts ...Option) (*Driver, error) {
	if runner == nil {
		return nil, ErrRunnerMustBeSet
	}

	d := &Driver{
		runner:        runner,
		binary:        cfg.Binary,
		shareDir:      cfg.ShareDir,
		workDir:       cfg.WorkDir,
		strict:        cfg.Strict,
		keepOnFailure: cfg.KeepOnFailure,
		scaleJobs:     cfg.ScaleJobs,
		program:       DefaultProgram,
		stdout:        os.Stdout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.binary == "" {
		d.binary = vessel.DefaultBinary
	}
	if d.workDir == "" {
		d.workDir = "."
	}
	if d.scaleJobs < 1 {
		d.scaleJobs = 1
	}

	workDir, err := filepath.Abs(d.workDir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve work directory %s", d.workDir)
	}
	d.workDir = workDir

	return d, nil
}

// PrintUsage writes the usage text to the driver output.
func (d *Driver) PrintUsage() {
	PrintUsage(d.stdout, d.program)
}

// Run executes mode with its positional arguments.
// An empty, unknown or help mode prints the usage text and succeeds without running anything.
// Files created in the work directory during the run are removed afterwards, except the outputs.
func (d *Driver) Run(ctx context.Context, mode string, args []string) error {
	def, ok := lookupMode(mode)
	if !ok {
		d.PrintUsage()

		return nil
	}

	err := def.checkArgs(args)
	if err != nil {
		d.PrintUsage()

		return err
	}

	before, err := listFiles(d.workDir)
	if err != nil {
		return err
	}

	runErr := d.run(ctx, def, args)
	if runErr != nil && d.keepOnFailure {
		d.logger.Warn("run failed, keeping intermediate files", "work_dir", d.workDir)

		return runErr
	}

	keep := d.keepRules(def.output(args))
	cleanErr := d.cleanup(before, keep)
	if runErr != nil {
		if cleanErr != nil {
			d.logger.Error("unable to clean work directory", "error", cleanErr)
		}

		return runErr
	}

	return cleanErr
}

func (d *Driver) run(ctx context.Context, def modeDef, args []string) error {
	ds, err := vessel.Lookup(def.dataset, d.shareDir)
	if err != nil {
		return err
	}

	switch def.kind {
	case segmentKind:
		return d.segment(ctx, ds, args[0], args[1])
	case scaleKind:
		return d.scale(ctx, ds, args)
	case calibratedKind:
		return d.calibrated(ctx, ds, def.variant, args[0], args[1], args[2])
	default:
		return errors.Errorf("unsupported mode %s", def.name)
	}
}

func (d *Driver) newPipeline() (*pipeline.Pipeline, error) {
	opts := append([]model.PipelineOption{logging.PipelineLogger(d.logger)}, d.pipeOpts...)

	pipe, err := pipeline.New(opts...)
	if err != nil {
		return nil, err
	}
	if !d.strict {
		pipe.ContinueOnError()
	}

	return pipe, nil
}

// invoke logs the command line then runs it.
func (d *Driver) invoke(ctx context.Context, inv vessel.Invocation) error {
	d.logger.Info("command to execute", "stage", inv.Stage, "command", inv.CommandLine(d.binary))

	return d.runner.Run(ctx, inv)
}

// invokeStep adds a step running a single tool invocation.
func (d *Driver) invokeStep(pipe *pipeline.Pipeline, stage string, args []string, outputs ...string) error {
	_, err := pipeline.AddStep(pipe, stage, func(ctx context.Context) error {
		return d.invoke(ctx, vessel.Invocation{Stage: stage, Args: args})
	}, pipeline.StepOutputs(d.paths(outputs...)...))

	return err
}

// path resolves p against the work directory.
func (d *Driver) path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(d.workDir, p)
}

func (d *Driver) paths(ps ...string) []string {
	res := make([]string, len(ps))
	for i, p := range ps {
		res[i] = d.path(p)
	}

	return res
}
