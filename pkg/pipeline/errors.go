package pipeline

import (
	"os"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("p must be set")
	ErrStepFnMustBeSet   = errors.New("step function must be set")
	ErrInputsMustBeSet   = errors.New("inputs must not be empty")
	ErrMissingInput      = errors.New("missing input file")
	ErrMissingOutput     = errors.New("missing output file")
)

// checkFiles makes sure every path exists. Missing paths are reported with the sentinel.
func checkFiles(sentinel error, paths []string) error {
	for _, path := range paths {
		_, err := os.Stat(path)
		if err == nil {
			continue
		}

		if os.IsNotExist(err) {
			return errors.Wrap(sentinel, path)
		}

		return errors.Wrapf(err, "unable to stat %s", path)
	}

	return nil
}
