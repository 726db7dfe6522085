package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-vessel/pkg/pipeline"
	"github.com/askiada/go-vessel/pkg/vessel"
)

type scaleImage struct {
	idx  int
	path string
	id   string
	a    vessel.Artifacts
	// diag receives the stage1 diagnostics of the image.
	diag *bytes.Buffer
}

// imageID is the base name of path without its extension.
func imageID(path string) string {
	name := filepath.Base(path)

	return strings.TrimSuffix(name, filepath.Ext(name))
}

func newScaleImages(paths []string) ([]*scaleImage, error) {
	seen := make(map[string]string, len(paths))
	images := make([]*scaleImage, len(paths))
	for i, p := range paths {
		id := imageID(p)
		if prev, ok := seen[id]; ok {
			return nil, errors.Wrapf(ErrDuplicateImageID, "%s is used by %s and %s", id, prev, p)
		}
		seen[id] = p
		images[i] = &scaleImage{idx: i, path: p, id: id, a: vessel.ImageArtifacts(id), diag: &bytes.Buffer{}}
	}

	return images, nil
}

// scale estimates the image scale of a set of images and persists it.
func (d *Driver) scale(ctx context.Context, ds vessel.Dataset, paths []string) error {
	images, err := newScaleImages(paths)
	if err != nil {
		return err
	}

	scaleLog := d.path(vessel.ScaleLogFile)
	err = os.WriteFile(scaleLog, nil, 0o644)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", scaleLog)
	}

	pipe, err := d.newPipeline()
	if err != nil {
		return err
	}

	var outputs []string
	for _, im := range images {
		outputs = append(outputs, im.a.Stage0Outputs()...)
		outputs = append(outputs, im.a.Stage1)
	}

	_, err = pipeline.AddStepEach(pipe, "measure", images, func(ctx context.Context, im *scaleImage) error {
		stage0Err := d.invoke(ctx, vessel.Invocation{
			Stage: "stage0 " + im.id,
			Args:  vessel.Stage0Args(im.path, im.a),
		})
		if stage0Err != nil && (d.strict || ctx.Err() != nil) {
			return stage0Err
		}

		err := d.invoke(ctx, vessel.Invocation{
			Stage:  "stage1 " + im.id,
			Args:   vessel.ScaleStage1Args(ds, im.a),
			Stderr: im.diag,
		})
		if stage0Err != nil {
			return stage0Err
		}

		return err
	}, pipeline.StepConcurrency(d.scaleJobs), pipeline.StepOutputs(d.paths(outputs...)...))
	if err != nil {
		return err
	}

	_, err = pipeline.AddStep(pipe, "collect", func(context.Context) error {
		return appendDiagnostics(scaleLog, images)
	}, pipeline.StepOutputs(scaleLog))
	if err != nil {
		return err
	}

	scaleFile := d.path(vessel.ScaleFile)
	_, err = pipeline.AddStep(pipe, "gmean", func(ctx context.Context) error {
		var out bytes.Buffer
		err := d.invoke(ctx, vessel.Invocation{
			Stage:  "gmean",
			Args:   vessel.GMeanArgs(vessel.ScaleLogFile),
			Stdout: &out,
		})
		if err != nil {
			return err
		}

		scale, err := parsePositive(out.String())
		if err != nil {
			return errors.Wrapf(ErrInvalidScale, "%q", strings.TrimSpace(out.String()))
		}
		value := vessel.FormatFloat(scale)

		fmt.Fprintf(d.stdout, "IMGSCALE: %s\n", value)

		return errors.Wrapf(os.WriteFile(scaleFile, []byte(value+"\n"), 0o644), "unable to write %s", scaleFile)
	}, pipeline.StepInputs(scaleLog), pipeline.StepOutputs(scaleFile))
	if err != nil {
		return err
	}

	return pipe.Run(ctx)
}

// appendDiagnostics appends the buffered stage1 diagnostics to the scale log in input order.
func appendDiagnostics(scaleLog string, images []*scaleImage) error {
	file, err := os.OpenFile(scaleLog, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return errors.Wrapf(err, "unable to open %s", scaleLog)
	}

	for _, im := range images {
		_, err = file.Write(im.diag.Bytes())
		if err != nil {
			file.Close()

			return errors.Wrapf(err, "unable to append diagnostics of %s", im.id)
		}
	}

	return errors.Wrapf(file.Close(), "unable to close %s", scaleLog)
}
