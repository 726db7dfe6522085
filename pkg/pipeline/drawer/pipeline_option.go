package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-vessel/pkg/pipeline/measure"
	"github.com/askiada/go-vessel/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
	last      string
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStep(model.StartStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}
	err = pd.AddStep(model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}
	pd.last = model.StartStep.Name

	return nil
}

func (pd *pipelineDrawer) PrepareStep(parentStep, step *model.StepInfo) error {
	err := pd.AddStep(step.Name)
	if err != nil {
		return err
	}
	err = pd.AddLink(parentStep.Name, step.Name)
	if err != nil {
		return err
	}
	pd.last = step.Name

	return nil
}

func (pd *pipelineDrawer) OnStepStart(*model.StepInfo) error {
	return nil
}

func (pd *pipelineDrawer) OnStepOutput(*model.StepInfo, time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) OnStepError(step *model.StepInfo, _ error) error {
	return pd.MarkFailed(step.Name)
}

func (pd *pipelineDrawer) Finish() error {
	err := pd.AddLink(pd.last, model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to link end step")
	}

	err = pd.SetTotalTime(model.EndStep.Name, pd.startTime)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the pipeline steps once the pipeline finished. The measure is optional.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure, startTime: time.Now()}
}
