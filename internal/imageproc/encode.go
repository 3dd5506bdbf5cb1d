package imageproc

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"

	"github.com/pkg/errors"
)

// ToDataURI encodes an image as a self-describing base64 JPEG data URI so it
// can be inlined into a JSON response without a separate file transfer.
func ToDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", errors.Wrap(err, "jpeg encode")
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
