package driver

import (
	"context"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-vessel/pkg/vessel"
)

// calibrated runs a scale adjusted segmentation. The ca variant also needs the persisted multiplier.
func (d *Driver) calibrated(ctx context.Context, ds vessel.Dataset, variant vessel.Variant, input, scaleArg, output string) error {
	scale, err := d.resolveScale(scaleArg)
	if err != nil {
		return err
	}

	cal := vessel.Calibration{Variant: variant, Scale: scale, Multiplier: 1}
	if variant == vessel.VariantCA {
		cal.Multiplier, err = d.readMultiplier()
		if err != nil {
			return err
		}
	}

	d.logger.Debug("calibration", "variant", cal.Variant, "scale", cal.Scale, "multiplier", cal.Multiplier)

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
		{"stage1", vessel.CalibratedStage1Args(ds, a, cal), []string{a.Stage1}},
		{"stage2", vessel.CalibratedStage2Args(ds, a, cal), []string{a.Stage2}},
		{"stage4", vessel.CalibratedStage4Args(ds, a, cal), []string{a.Stage4}},
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

// resolveScale parses a scale literal. The persisted scale file name reads the scale from that file.
func (d *Driver) resolveScale(arg string) (float64, error) {
	raw := arg
	if arg == vessel.ScaleFile {
		data, err := os.ReadFile(d.path(vessel.ScaleFile))
		if os.IsNotExist(err) {
			return 0, errors.Wrapf(ErrScaleMissing, "%s, run a scale mode first", d.path(vessel.ScaleFile))
		}
		if err != nil {
			return 0, errors.Wrap(err, "unable to read scale")
		}
		raw = string(data)
	}

	scale, err := parsePositive(raw)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidScale, "%q", strings.TrimSpace(raw))
	}

	return scale, nil
}

func (d *Driver) readMultiplier() (float64, error) {
	path := d.path(vessel.MultiplierFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, errors.Wrap(ErrMultiplierMissing, path)
	}
	if err != nil {
		return 0, errors.Wrap(err, "unable to read multiplier")
	}

	mult, err := parsePositive(string(data))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidMultiplier, "%q in %s", strings.TrimSpace(string(data)), path)
	}

	return mult, nil
}

// parsePositive parses a finite, strictly positive number surrounded by optional white space.
func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, errors.Errorf("%v is not a positive number", v)
	}

	return v, nil
}
