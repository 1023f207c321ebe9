package gradient

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/heatmap/pkg/errors"
)

// LoadBackground reads and decodes a background image from disk.
func LoadBackground(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "background %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read background %s", path)
	}
	img, err := DecodeBackground(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode background %s", path)
	}
	return img, nil
}

// DecodeBackground decodes any registered image format from r.
func DecodeBackground(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}
