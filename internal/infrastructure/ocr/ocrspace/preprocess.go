package ocrspace

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/sunshineplan/imgconv"
)

const (
	maxImageSide    = 2048
	contrastPercent = 15
	jpegQuality     = 90
)

// preprocess orients the photo from EXIF, lifts contrast, caps the longer
// side at maxImageSide and re-encodes it as JPEG.
func preprocess(data []byte) ([]byte, error) {
	img, err := imgconv.Decode(bytes.NewReader(data), imgconv.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var out image.Image = imaging.AdjustContrast(img, contrastPercent)
	out = downscale(out, maxImageSide)

	var buf bytes.Buffer
	if err := imgconv.Write(&buf, out, &imgconv.FormatOption{
		Format:       imgconv.JPEG,
		EncodeOption: []imgconv.EncodeOption{imgconv.Quality(jpegQuality)},
	}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func downscale(img image.Image, limit int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= limit && h <= limit {
		return img
	}
	if w >= h {
		return imgconv.Resize(img, &imgconv.ResizeOption{Width: limit})
	}
	return imgconv.Resize(img, &imgconv.ResizeOption{Height: limit})
}
