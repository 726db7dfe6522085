package driver

import "github.com/pkg/errors"

var (
	ErrRunnerMustBeSet   = errors.New("runner must be set")
	ErrScaleMissing      = errors.New("persisted scale not found")
	ErrInvalidScale      = errors.New("invalid scale")
	ErrMultiplierMissing = errors.New("multiplier file not found")
	ErrInvalidMultiplier = errors.New("invalid multiplier")
	ErrDuplicateImageID  = errors.New("duplicate image id")
)
