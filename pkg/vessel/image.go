package vessel

import (
	"image"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// InspectBMP decodes the header of the bitmap at path.
func InspectBMP(path string) (image.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, errors.Wrapf(err, "unable to open %s", path)
	}
	defer file.Close()

	cfg, err := bmp.DecodeConfig(file)
	if err != nil {
		return image.Config{}, errors.Wrapf(err, "unable to decode %s", path)
	}

	return cfg, nil
}
