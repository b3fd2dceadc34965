package generate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const (
	baseImageSide    = 100
	baseImageQuality = 95
)

// WriteBaseImage renders the small solid-color seed image that padding
// then grows to the target size.
func WriteBaseImage(path, format string) error {
	img := image.NewRGBA(image.Rect(0, 0, baseImageSide, baseImageSide))
	draw.Draw(img, img.Bounds(),
		&image.Uniform{C: color.RGBA{R: 255, A: 255}}, image.Point{}, draw.Src)

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var encodeErr error
	switch format {
	case "png":
		encodeErr = png.Encode(f, img)
	case "jpg", "jpeg":
		encodeErr = jpeg.Encode(f, img, &jpeg.Options{Quality: baseImageQuality})
	case "bmp":
		encodeErr = bmp.Encode(f, img)
	case "tiff":
		encodeErr = tiff.Encode(f, img, nil)
	default:
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if encodeErr != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", format, encodeErr)
	}
	return f.Close()
}
