package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// CropColumns copies the column span [x1, x2) of gray, at full height, into a
// new image whose bounds start at (0,0). Coordinates are relative to the
// image's bounds.
func CropColumns(gray *image.Gray, x1, x2 int) (*image.Gray, error) {
	bounds := gray.Bounds()
	width := bounds.Dx()

	if x1 < 0 || x2 > width {
		return nil, fmt.Errorf("column span [%d,%d) outside image width %d", x1, x2, width)
	}
	if x1 >= x2 {
		return nil, fmt.Errorf("invalid column span: x1 must be < x2, got [%d,%d)", x1, x2)
	}

	rect := image.Rect(bounds.Min.X+x1, bounds.Min.Y, bounds.Min.X+x2, bounds.Max.Y)
	return toGray(imaging.Crop(gray, rect)), nil
}

// MergeSideBySide places left and right next to each other on one canvas.
// The result is as wide as both inputs together and as tall as the taller
// one; rows not covered by the shorter input are white.
func MergeSideBySide(left, right *image.Gray) *image.Gray {
	lb, rb := left.Bounds(), right.Bounds()

	width := lb.Dx() + rb.Dx()
	height := lb.Dy()
	if rb.Dy() > height {
		height = rb.Dy()
	}

	canvas := imaging.New(width, height, color.White)
	canvas = imaging.Paste(canvas, left, image.Pt(0, 0))
	canvas = imaging.Paste(canvas, right, image.Pt(lb.Dx(), 0))

	return toGray(canvas)
}

// EncodedImage is a PNG rendition of a raster for transport in JSON payloads.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// toGray converts an NRGBA raster to a zero-origin grayscale raster.
func toGray(src *image.NRGBA) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := src.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			dst.SetGray(x, y, color.GrayModel.Convert(c).(color.Gray))
		}
	}
	return dst
}
