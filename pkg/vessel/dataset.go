package vessel

import (
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

const (
	DriveName = "drive"
	StareName = "stare"
)

var ErrUnknownDataset = errors.New("unknown dataset")

// Dataset holds the model location and the tuning constants of one reference dataset.
type Dataset struct {
	Name     string
	ModelDir string
	// ROI is the region of interest radius.
	ROI int

	Stage2MaxIt int
	Stage2NW    float64
	Stage2DynTh float64

	Stage4WA      float64
	Stage4SizeTh0 int
	Stage4AP      float64
}

// Drive returns the DRIVE configuration with its model under shareDir.
func Drive(shareDir string) Dataset {
	return Dataset{
		Name:          DriveName,
		ModelDir:      filepath.Join(shareDir, "drive-model"),
		ROI:           267,
		Stage2MaxIt:   36,
		Stage2NW:      3.145,
		Stage2DynTh:   10.5,
		Stage4WA:      8.32,
		Stage4SizeTh0: 19,
		Stage4AP:      0.529,
	}
}

// Stare returns the STARE configuration with its model under shareDir.
func Stare(shareDir string) Dataset {
	return Dataset{
		Name:          StareName,
		ModelDir:      filepath.Join(shareDir, "stare-model"),
		ROI:           326,
		Stage2MaxIt:   42,
		Stage2NW:      3.12,
		Stage2DynTh:   10,
		Stage4WA:      10.57,
		Stage4SizeTh0: 42,
		Stage4AP:      0.592,
	}
}

// Lookup returns the dataset called name.
func Lookup(name, shareDir string) (Dataset, error) {
	switch name {
	case DriveName:
		return Drive(shareDir), nil
	case StareName:
		return Stare(shareDir), nil
	default:
		return Dataset{}, errors.Wrap(ErrUnknownDataset, name)
	}
}

// FeatureFile is the trained feature file read by stage1 and stage4.
func (d Dataset) FeatureFile() string {
	return filepath.Join(d.ModelDir, "trained-features.fdf")
}

// FormatFloat renders v with the fewest digits that represent it exactly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
