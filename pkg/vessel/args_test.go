package vessel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-vessel/pkg/vessel"
)

const shareDir = "/opt/share/vessel"

func TestLookup(t *testing.T) {
	t.Parallel()

	ds, err := vessel.Lookup("drive", shareDir)
	require.NoError(t, err)
	assert.Equal(t, vessel.Drive(shareDir), ds)

	ds, err = vessel.Lookup("stare", shareDir)
	require.NoError(t, err)
	assert.Equal(t, vessel.Stare(shareDir), ds)

	_, err = vessel.Lookup("hrf", shareDir)
	assert.ErrorIs(t, err, vessel.ErrUnknownDataset)
}

func TestPlainArgs(t *testing.T) {
	t.Parallel()

	art := vessel.DefaultArtifacts()

	tcs := map[string]struct {
		ds     vessel.Dataset
		stage1 []string
		stage2 []string
		stage4 []string
	}{
		"drive": {
			ds: vessel.Drive(shareDir),
			stage1: []string{
				"--vessel.stage1", "/opt/share/vessel/drive-model/trained-features.fdf",
				"extended.bmp", "roi-s1.bmp", "support.bmp", "stage1.bmp",
			},
			stage2: []string{
				"--vessel.stage2", "--vessel.stage2.ws", "1", "--vessel.stage2.shift", "1",
				"--vessel.stage2.maxit", "36", "--vessel.stage2.nw", "3.145", "--vessel.stage2.dynth", "10.5",
				"--vessel.stage2.relint", "/opt/share/vessel/drive-model",
				"extended.bmp", "stage1.bmp", "roi-s1.bmp", "stage2.bmp",
			},
			stage4: []string{
				"--vessel.stage4", "/opt/share/vessel/drive-model/trained-features.fdf",
				"--vessel.stage4.wa", "8.32", "--vessel.stage4.sizeth0", "19", "--vessel.stage4.ap", "0.529",
				"extended.bmp", "stage2.bmp", "roi-s1.bmp", "support.bmp", "stage4.bmp",
			},
		},
		"stare": {
			ds: vessel.Stare(shareDir),
			stage1: []string{
				"--vessel.stage1", "/opt/share/vessel/stare-model/trained-features.fdf",
				"extended.bmp", "roi-s1.bmp", "support.bmp", "stage1.bmp",
			},
			stage2: []string{
				"--vessel.stage2", "--vessel.stage2.ws", "1", "--vessel.stage2.shift", "1",
				"--vessel.stage2.maxit", "42", "--vessel.stage2.nw", "3.12", "--vessel.stage2.dynth", "10",
				"--vessel.stage2.relint", "/opt/share/vessel/stare-model",
				"extended.bmp", "stage1.bmp", "roi-s1.bmp", "stage2.bmp",
			},
			stage4: []string{
				"--vessel.stage4", "/opt/share/vessel/stare-model/trained-features.fdf",
				"--vessel.stage4.wa", "10.57", "--vessel.stage4.sizeth0", "42", "--vessel.stage4.ap", "0.592",
				"extended.bmp", "stage2.bmp", "roi-s1.bmp", "support.bmp", "stage4.bmp",
			},
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t,
				[]string{"--vessel.stage0", "myimg.bmp", "roi-s1.bmp", "extended.bmp", "support.bmp", "roi.bmp"},
				vessel.Stage0Args("myimg.bmp", art))
			assert.Equal(t, tc.stage1, vessel.Stage1Args(tc.ds, art))
			assert.Equal(t, tc.stage2, vessel.Stage2Args(tc.ds, art))
			assert.Equal(t, tc.stage4, vessel.Stage4Args(tc.ds, art))
		})
	}
}

func TestScaleArgs(t *testing.T) {
	t.Parallel()

	art := vessel.ImageArtifacts("01_test")

	assert.Equal(t,
		[]string{"--vessel.stage0", "imgs/01_test.tif", "roi-s1-01_test.bmp", "extended-01_test.bmp", "support-01_test.bmp", "roi-01_test.bmp"},
		vessel.Stage0Args("imgs/01_test.tif", art))
	assert.Equal(t,
		[]string{
			"--vessel.stage1", "--vessel.stage1.roiradius", "326",
			"/opt/share/vessel/stare-model/trained-features.fdf",
			"extended-01_test.bmp", "roi-s1-01_test.bmp", "support-01_test.bmp", "stage1-01_test.bmp",
			"--unknown", "1",
		},
		vessel.ScaleStage1Args(vessel.Stare(shareDir), art))
	assert.Equal(t, []string{"--gmean", "scales.txt"}, vessel.GMeanArgs(vessel.ScaleLogFile))
}

func TestCalibratedArgs(t *testing.T) {
	t.Parallel()

	art := vessel.DefaultArtifacts()
	ds := vessel.Drive(shareDir)

	tcs := map[string]struct {
		cal    vessel.Calibration
		stage1 []string
		stage2 []string
		stage4 []string
	}{
		"cn": {
			cal: vessel.Calibration{Variant: vessel.VariantCN, Scale: 0.97, Multiplier: 3},
			stage1: []string{
				"--vessel.stage1", "--vessel.stage1.roiradius", "267", "--vessel.stage1.imgScale", "0.97",
				"/opt/share/vessel/drive-model/trained-features.fdf",
				"extended.bmp", "roi-s1.bmp", "support.bmp", "stage1.bmp",
				"--unknown", "0", "--vessel.stage1.th1mult", "1", "--vessel.stage1.th2mult", "1",
			},
			stage2: []string{
				"--vessel.stage2", "--vessel.stage1.roiradius", "267", "--vessel.stage2.ws", "0.97",
				"--vessel.stage2.dynth", "10.5", "--vessel.stage2.relint", "/opt/share/vessel/drive-model",
				"--vessel.stage2.nw", "3.145", "--vessel.stage2.maxit", "36",
				"extended.bmp", "stage1.bmp", "roi.bmp", "stage2.bmp", "--unknown", "0",
			},
			stage4: []string{
				"--unknown", "0", "--vessel.stage4", "--vessel.stage1.roiradius", "267", "--vessel.stage4.ws", "0.97",
				"/opt/share/vessel/drive-model/trained-features.fdf",
				"extended.bmp", "stage2.bmp", "roi.bmp", "support.bmp", "stage4.bmp",
				"--vessel.stage4.sizeth0", "19", "--vessel.stage4.ap", "0.529",
				"--vessel.stage1.th1mult", "1", "--vessel.stage1.th2mult", "1", "--vessel.stage4.wa", "8.32",
			},
		},
		"ca": {
			cal: vessel.Calibration{Variant: vessel.VariantCA, Scale: 1.25, Multiplier: 1.5},
			stage1: []string{
				"--vessel.stage1", "--vessel.stage1.roiradius", "267", "--vessel.stage1.imgScale", "1.25",
				"/opt/share/vessel/drive-model/trained-features.fdf",
				"extended.bmp", "roi-s1.bmp", "support.bmp", "stage1.bmp",
				"--unknown", "2", "--vessel.stage1.th1mult", "1", "--vessel.stage1.th2mult", "1",
			},
			stage2: []string{
				"--vessel.stage2", "--vessel.stage1.roiradius", "267", "--vessel.stage2.ws", "1.25",
				"--vessel.stage2.dynth", "10.5", "--vessel.stage2.relint", "/opt/share/vessel/drive-model",
				"--vessel.stage2.nw", "3.145", "--vessel.stage2.maxit", "36",
				"extended.bmp", "stage1.bmp", "roi.bmp", "stage2.bmp", "--unknown", "2",
			},
			stage4: []string{
				"--unknown", "1", "--vessel.stage4", "--vessel.stage1.roiradius", "267", "--vessel.stage4.ws", "1.25",
				"/opt/share/vessel/drive-model/trained-features.fdf",
				"extended.bmp", "stage2.bmp", "roi.bmp", "support.bmp", "stage4.bmp",
				"--vessel.stage4.sizeth0", "19", "--vessel.stage4.ap", "0.529",
				"--vessel.stage1.th1mult", "1.5", "--vessel.stage1.th2mult", "1.5", "--vessel.stage4.wa", "8.32",
			},
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.stage1, vessel.CalibratedStage1Args(ds, art, tc.cal))
			assert.Equal(t, tc.stage2, vessel.CalibratedStage2Args(ds, art, tc.cal))
			assert.Equal(t, tc.stage4, vessel.CalibratedStage4Args(ds, art, tc.cal))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "10", vessel.FormatFloat(10))
	assert.Equal(t, "3.145", vessel.FormatFloat(3.145))
	assert.Equal(t, "0.529", vessel.FormatFloat(0.529))
}

func TestCommandLine(t *testing.T) {
	t.Parallel()

	inv := vessel.Invocation{Stage: "stage0", Args: vessel.Stage0Args("myimg.bmp", vessel.DefaultArtifacts())}
	assert.Equal(t, "vessel --vessel.stage0 myimg.bmp roi-s1.bmp extended.bmp support.bmp roi.bmp", inv.CommandLine("vessel"))
}
