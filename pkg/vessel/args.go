package vessel

import "strconv"

// Variant selects the unknown-image handling of a calibrated run.
type Variant string

const (
	// VariantCN normalizes the parameters with the image scale.
	VariantCN Variant = "cn"
	// VariantCA also applies the externally supplied threshold multiplier.
	VariantCA Variant = "ca"
)

// unknownFlags returns the --unknown values of stage1, stage2 and stage4.
func (v Variant) unknownFlags() (string, string, string) {
	if v == VariantCA {
		return "2", "2", "1"
	}

	return "0", "0", "0"
}

// Calibration carries the values a calibrated run adds to the dataset constants.
type Calibration struct {
	Variant    Variant
	Scale      float64
	Multiplier float64
}

// Stage0Args builds the stage0 invocation: region of interest and extended image of input.
func Stage0Args(input string, a Artifacts) []string {
	return []string{"--vessel.stage0", input, a.ROIS1, a.Extended, a.Support, a.ROI}
}

func Stage1Args(ds Dataset, a Artifacts) []string {
	return []string{"--vessel.stage1", ds.FeatureFile(), a.Extended, a.ROIS1, a.Support, a.Stage1}
}

func Stage2Args(ds Dataset, a Artifacts) []string {
	return []string{
		"--vessel.stage2",
		"--vessel.stage2.ws", "1",
		"--vessel.stage2.shift", "1",
		"--vessel.stage2.maxit", strconv.Itoa(ds.Stage2MaxIt),
		"--vessel.stage2.nw", FormatFloat(ds.Stage2NW),
		"--vessel.stage2.dynth", FormatFloat(ds.Stage2DynTh),
		"--vessel.stage2.relint", ds.ModelDir,
		a.Extended, a.Stage1, a.ROIS1, a.Stage2,
	}
}

func Stage4Args(ds Dataset, a Artifacts) []string {
	return []string{
		"--vessel.stage4", ds.FeatureFile(),
		"--vessel.stage4.wa", FormatFloat(ds.Stage4WA),
		"--vessel.stage4.sizeth0", strconv.Itoa(ds.Stage4SizeTh0),
		"--vessel.stage4.ap", FormatFloat(ds.Stage4AP),
		a.Extended, a.Stage2, a.ROIS1, a.Support, a.Stage4,
	}
}

// ScaleStage1Args builds the stage1 invocation of a scale run. Its diagnostics go to stderr.
func ScaleStage1Args(ds Dataset, a Artifacts) []string {
	return []string{
		"--vessel.stage1",
		"--vessel.stage1.roiradius", strconv.Itoa(ds.ROI),
		ds.FeatureFile(),
		a.Extended, a.ROIS1, a.Support, a.Stage1,
		"--unknown", "1",
	}
}

// GMeanArgs builds the aggregation invocation printing the geometric mean scale on stdout.
func GMeanArgs(scaleLog string) []string {
	return []string{"--gmean", scaleLog}
}

func CalibratedStage1Args(ds Dataset, a Artifacts, cal Calibration) []string {
	unknown, _, _ := cal.Variant.unknownFlags()

	return []string{
		"--vessel.stage1",
		"--vessel.stage1.roiradius", strconv.Itoa(ds.ROI),
		"--vessel.stage1.imgScale", FormatFloat(cal.Scale),
		ds.FeatureFile(),
		a.Extended, a.ROIS1, a.Support, a.Stage1,
		"--unknown", unknown,
		"--vessel.stage1.th1mult", "1",
		"--vessel.stage1.th2mult", "1",
	}
}

func CalibratedStage2Args(ds Dataset, a Artifacts, cal Calibration) []string {
	_, unknown, _ := cal.Variant.unknownFlags()

	return []string{
		"--vessel.stage2",
		"--vessel.stage1.roiradius", strconv.Itoa(ds.ROI),
		"--vessel.stage2.ws", FormatFloat(cal.Scale),
		"--vessel.stage2.dynth", FormatFloat(ds.Stage2DynTh),
		"--vessel.stage2.relint", ds.ModelDir,
		"--vessel.stage2.nw", FormatFloat(ds.Stage2NW),
		"--vessel.stage2.maxit", strconv.Itoa(ds.Stage2MaxIt),
		a.Extended, a.Stage1, a.ROI, a.Stage2,
		"--unknown", unknown,
	}
}

// CalibratedStage4Args builds the final stage of a calibrated run. The cn variant always uses a multiplier of 1.
func CalibratedStage4Args(ds Dataset, a Artifacts, cal Calibration) []string {
	_, _, unknown := cal.Variant.unknownFlags()

	mult := "1"
	if cal.Variant == VariantCA {
		mult = FormatFloat(cal.Multiplier)
	}

	return []string{
		"--unknown", unknown,
		"--vessel.stage4",
		"--vessel.stage1.roiradius", strconv.Itoa(ds.ROI),
		"--vessel.stage4.ws", FormatFloat(cal.Scale),
		ds.FeatureFile(),
		a.Extended, a.Stage2, a.ROI, a.Support, a.Stage4,
		"--vessel.stage4.sizeth0", strconv.Itoa(ds.Stage4SizeTh0),
		"--vessel.stage4.ap", FormatFloat(ds.Stage4AP),
		"--vessel.stage1.th1mult", mult,
		"--vessel.stage1.th2mult", mult,
		"--vessel.stage4.wa", FormatFloat(ds.Stage4WA),
	}
}
