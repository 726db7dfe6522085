package logging

import (
	"log/slog"
	"time"

	"github.com/askiada/go-vessel/pkg/pipeline/model"
)

type pipelineLogger struct {
	logger *slog.Logger
}

// PipelineLogger logs the lifecycle of every pipeline step.
func PipelineLogger(logger *slog.Logger) model.PipelineOption {
	return &pipelineLogger{logger: logger}
}

func (pl *pipelineLogger) New() error {
	return nil
}

func (pl *pipelineLogger) PrepareStep(parentStep, step *model.StepInfo) error {
	pl.logger.Debug("stage scheduled", "stage", step.Name, "after", parentStep.Name)

	return nil
}

func (pl *pipelineLogger) OnStepStart(step *model.StepInfo) error {
	pl.logger.Debug("stage started", "stage", step.Name, "inputs", step.Inputs)

	return nil
}

func (pl *pipelineLogger) OnStepOutput(step *model.StepInfo, computationDuration time.Duration) error {
	pl.logger.Info("stage finished", "stage", step.Name, "elapsed", computationDuration)

	return nil
}

func (pl *pipelineLogger) OnStepError(step *model.StepInfo, err error) error {
	pl.logger.Warn("stage failed", "stage", step.Name, "error", err)

	return nil
}

func (pl *pipelineLogger) Finish() error {
	return nil
}
