package vessel

const (
	// ScaleLogFile collects the stage1 diagnostics of a scale run.
	ScaleLogFile = "scales.txt"
	// ScaleFile persists the calibration scale between runs.
	ScaleFile = "imgscale.txt"
	// MultiplierFile is written by an earlier, separate process and read by the ca variant.
	MultiplierFile = "multiplier.txt"
)

// Artifacts names the intermediate files exchanged between stages.
type Artifacts struct {
	ROIS1    string
	Extended string
	Support  string
	ROI      string
	Stage1   string
	Stage2   string
	Stage4   string
}

// DefaultArtifacts are the file names used by single image pipelines.
func DefaultArtifacts() Artifacts {
	return Artifacts{
		ROIS1:    "roi-s1.bmp",
		Extended: "extended.bmp",
		Support:  "support.bmp",
		ROI:      "roi.bmp",
		Stage1:   "stage1.bmp",
		Stage2:   "stage2.bmp",
		Stage4:   "stage4.bmp",
	}
}

// ImageArtifacts suffixes every file name with the image id, so several images can share a directory.
func ImageArtifacts(id string) Artifacts {
	return Artifacts{
		ROIS1:    "roi-s1-" + id + ".bmp",
		Extended: "extended-" + id + ".bmp",
		Support:  "support-" + id + ".bmp",
		ROI:      "roi-" + id + ".bmp",
		Stage1:   "stage1-" + id + ".bmp",
		Stage2:   "stage2-" + id + ".bmp",
		Stage4:   "stage4-" + id + ".bmp",
	}
}

// Stage0Outputs are the files written by stage0.
func (a Artifacts) Stage0Outputs() []string {
	return []string{a.ROIS1, a.Extended, a.Support, a.ROI}
}
