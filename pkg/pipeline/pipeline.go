package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-vessel/pkg/pipeline/model"
)

// Pipeline is a sequence of steps.
type Pipeline struct {
	opts       []model.PipelineOption
	steps      []*step
	last       *model.StepInfo
	permissive bool
	// hookMu serializes OnStepError calls coming from concurrent inputs.
	hookMu sync.Mutex
}

type step struct {
	details *model.StepInfo
	run     func(ctx context.Context, pipe *Pipeline) error
}

// New creates a new pipeline.
func New(opts ...model.PipelineOption) (*Pipeline, error) {
	pipe := &Pipeline{
		opts: opts,
		last: model.StartStep,
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// ContinueOnError makes the pipeline run every step even when a previous one failed.
// Each-steps also run every input when one of them fails.
// Failures are still reported to the options through OnStepError. Context cancellation always stops the run.
func (p *Pipeline) ContinueOnError() *Pipeline {
	p.permissive = true

	return p
}

// Steps returns the descriptors of the steps in execution order.
func (p *Pipeline) Steps() []*model.StepInfo {
	res := make([]*model.StepInfo, len(p.steps))
	for i, st := range p.steps {
		res[i] = st.details
	}

	return res
}

// Run executes the steps in order and waits for the last one to finish.
// It returns early on the first error unless ContinueOnError was called.
func (p *Pipeline) Run(ctx context.Context) error {
	err := p.runSteps(ctx)
	finishErr := p.finishRun()
	if err != nil {
		return err
	}

	return finishErr
}

func (p *Pipeline) runSteps(ctx context.Context) error {
	for _, st := range p.steps {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), st.details.Name)
		}

		err := p.runStep(ctx, st)
		if err == nil {
			continue
		}

		err = errors.Wrap(err, st.details.Name)
		hookErr := p.onStepError(st.details, err)
		if hookErr != nil {
			return hookErr
		}

		if !p.permissive || isContextErr(err) {
			return err
		}
	}

	return nil
}

func (p *Pipeline) runStep(ctx context.Context, st *step) error {
	err := checkFiles(ErrMissingInput, st.details.Inputs)
	if err != nil {
		return err
	}

	for _, opt := range p.opts {
		err := opt.OnStepStart(st.details)
		if err != nil {
			return errors.Wrap(err, "unable to run step start function")
		}
	}

	err = st.run(ctx, p)
	if err != nil {
		return err
	}

	return checkFiles(ErrMissingOutput, st.details.Outputs)
}

func (p *Pipeline) onStepOutput(details *model.StepInfo, elapsed time.Duration) error {
	for _, opt := range p.opts {
		err := opt.OnStepOutput(details, elapsed)
		if err != nil {
			return errors.Wrap(err, "unable to run step output function")
		}
	}

	return nil
}

func (p *Pipeline) onStepError(details *model.StepInfo, stepErr error) error {
	p.hookMu.Lock()
	defer p.hookMu.Unlock()

	for _, opt := range p.opts {
		err := opt.OnStepError(details, stepErr)
		if err != nil {
			return errors.Wrap(err, "unable to run step error function")
		}
	}

	return nil
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
