package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-vessel/pkg/pipeline/model"
)

func sequentialEachFn[I any](ctx context.Context, pipe *Pipeline, details *model.StepInfo, inputs []I, eachFn func(context.Context, I) error) error {
	for idx, in := range inputs {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "input %d", idx)
		default:
		}

		startFn := time.Now()
		err := eachFn(ctx, in)
		if err != nil {
			err = eachInputFailed(pipe, details, idx, err)
			if err != nil {
				return err
			}

			continue
		}

		err = pipe.onStepOutput(details, time.Since(startFn))
		if err != nil {
			return err
		}
	}

	return nil
}

func concurrentEachFn[I any](ctx context.Context, pipe *Pipeline, details *model.StepInfo, inputs []I, eachFn func(context.Context, I) error) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(details.Concurrent)
	// each go routine stops as soon as another one returned an error
	for idx, in := range inputs {
		localIdx, localIn := idx, in
		errGrp.Go(func() error {
			if dCtx.Err() != nil {
				return errors.Wrapf(dCtx.Err(), "input %d", localIdx)
			}

			startFn := time.Now()
			err := eachFn(dCtx, localIn)
			if err != nil {
				return eachInputFailed(pipe, details, localIdx, err)
			}

			return pipe.onStepOutput(details, time.Since(startFn))
		})
	}

	return errGrp.Wait()
}

// eachInputFailed returns the error of one input. When the pipeline continues on error,
// the failure is reported to the options instead and the remaining inputs keep running.
func eachInputFailed(pipe *Pipeline, details *model.StepInfo, idx int, err error) error {
	err = errors.Wrapf(err, "input %d", idx)
	if !pipe.permissive || isContextErr(err) {
		return err
	}

	return pipe.onStepError(details, errors.Wrap(err, details.Name))
}

func runEach[I any](ctx context.Context, pipe *Pipeline, details *model.StepInfo, inputs []I, eachFn func(context.Context, I) error) error {
	if details.Concurrent <= 0 {
		details.Concurrent = 1
	}
	if details.Concurrent == 1 {
		return sequentialEachFn(ctx, pipe, details, inputs, eachFn)
	}

	return concurrentEachFn(ctx, pipe, details, inputs, eachFn)
}

func prepareStep(pipe *Pipeline, name string, stepType model.StepType, opts ...StepOption) (*model.StepInfo, error) {
	details := &model.StepInfo{
		Type:       stepType,
		Name:       name,
		Concurrent: 1,
	}
	for _, opt := range opts {
		opt(details)
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareStep(pipe.last, details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before step function")
		}
	}

	return details, nil
}

func addStep(pipe *Pipeline, details *model.StepInfo, run func(ctx context.Context, pipe *Pipeline) error) *model.StepInfo {
	pipe.steps = append(pipe.steps, &step{details: details, run: run})
	pipe.last = details

	return details
}

// AddStep appends a step that runs stepFn once, after every previously added step.
func AddStep(pipe *Pipeline, name string, stepFn func(ctx context.Context) error, opts ...StepOption) (*model.StepInfo, error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}
	if stepFn == nil {
		return nil, ErrStepFnMustBeSet
	}

	details, err := prepareStep(pipe, name, model.NormalStepType, opts...)
	if err != nil {
		return nil, err
	}

	return addStep(pipe, details, func(ctx context.Context, pipe *Pipeline) error {
		startFn := time.Now()
		err := stepFn(ctx)
		if err != nil {
			return err
		}

		return pipe.onStepOutput(details, time.Since(startFn))
	}), nil
}

// AddStepEach appends a step that runs eachFn for every input.
// Inputs are processed in order, unless StepConcurrency allows more than one at a time.
func AddStepEach[I any](pipe *Pipeline, name string, inputs []I, eachFn func(ctx context.Context, input I) error, opts ...StepOption) (*model.StepInfo, error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}
	if eachFn == nil {
		return nil, ErrStepFnMustBeSet
	}
	if len(inputs) == 0 {
		return nil, ErrInputsMustBeSet
	}

	details, err := prepareStep(pipe, name, model.EachStepType, opts...)
	if err != nil {
		return nil, err
	}

	return addStep(pipe, details, func(ctx context.Context, pipe *Pipeline) error {
		return runEach(ctx, pipe, details, inputs, eachFn)
	}), nil
}
