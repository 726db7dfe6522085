package driver

import (
	"context"

	"github.com/askiada/go-vessel/pkg/pipeline"
	"github.com/askiada/go-vessel/pkg/vessel"
)

// segment runs the four stages of a plain segmentation and copies the result to output.
func (d *Driver) segment(ctx context.Context, ds vessel.Dataset, input, output string) error {
	pipe, err := d.newPipeline()
	if err != nil {
		return err
	}

	a := vessel.DefaultArtifacts()
	steps := []struct {
		stage   string
		args    []string
		outputs []string
	}{
		{"stage0", vessel.Stage0Args(input, a), a.Stage0Outputs()},
		{"stage1", vessel.Stage1Args(ds, a), []string{a.Stage1}},
		{"stage2", vessel.Stage2Args(ds, a), []string{a.Stage2}},
		{"stage4", vessel.Stage4Args(ds, a), []string{a.Stage4}},
	}
	for _, st := range steps {
		err = d.invokeStep(pipe, st.stage, st.args, st.outputs...)
		if err != nil {
			return err
		}
	}

	err = d.copyStep(pipe, a.Stage4, output)
	if err != nil {
		return err
	}

	return pipe.Run(ctx)
}

// copyStep adds the final step copying the last stage image to the requested output.
func (d *Driver) copyStep(pipe *pipeline.Pipeline, result, output string) error {
	src, dst := d.path(result), d.path(output)

	_, err := pipeline.AddStep(pipe, "output", func(context.Context) error {
		cfg, err := vessel.InspectBMP(src)
		if err != nil {
			d.logger.Warn("unable to inspect result", "file", src, "error", err)
		} else {
			d.logger.Info("segmentation done", "output", dst, "width", cfg.Width, "height", cfg.Height)
		}

		return copyFile(src, dst)
	}, pipeline.StepInputs(src), pipeline.StepOutputs(dst))

	return err
}
