package ember

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeTextureImage decodes r into an image.Image, registering PNG/JPEG/
// GIF (standard library) and BMP/TIFF/WebP (golang.org/x/image) decoders
// the same way the pack's imagex package does — via blank imports for
// their format-registration side effect, then a single image.Decode call.
func DecodeTextureImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("ember: decode texture: %w", err)
	}
	return img, format, nil
}
