package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	pipelineStepOption

	// Finish runs after the pipeline is finished, whether it failed or not.
	Finish() error
}

// pipelineStepOption defines the interface for step options at the pipeline level.
type pipelineStepOption interface {
	// PrepareStep runs when the step is added to the pipeline.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepStart runs right before the step is executed.
	OnStepStart(step *StepInfo) error
	// OnStepOutput runs everytime the step completes a unit of work.
	OnStepOutput(step *StepInfo, computationDuration time.Duration) error
	// OnStepError runs when the step fails.
	OnStepError(step *StepInfo, err error) error
}
