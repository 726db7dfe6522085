package measure

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-vessel/pkg/pipeline/model"
)

var ErrUnknownStep = errors.New("no metric for step")

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	return nil
}

func (pm *pipelineMeasure) PrepareStep(_, step *model.StepInfo) error {
	pm.AddMetric(step.Name)

	return nil
}

func (pm *pipelineMeasure) OnStepStart(*model.StepInfo) error {
	return nil
}

func (pm *pipelineMeasure) OnStepOutput(step *model.StepInfo, computationDuration time.Duration) error {
	mt := pm.GetMetric(step.Name)
	if mt == nil {
		return errors.Wrap(ErrUnknownStep, step.Name)
	}
	mt.AddDuration(computationDuration)

	return nil
}

func (pm *pipelineMeasure) OnStepError(step *model.StepInfo, _ error) error {
	mt := pm.GetMetric(step.Name)
	if mt == nil {
		return errors.Wrap(ErrUnknownStep, step.Name)
	}
	mt.AddFailure()

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure records the duration of every step into the measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
