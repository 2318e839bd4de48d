// Package imaging normalises uploaded store logos.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// Logo is a normalised logo, always PNG.
type Logo struct {
	Data   []byte
	Width  int
	Height int
}

// ContentType of every normalised logo.
const ContentType = "image/png"

// Processor resizes logos to fit the survey page header
type Processor struct {
	maxHeight int
}

// NewProcessor creates logo processor. maxHeight <= 0 falls back to 256.
func NewProcessor(maxHeight int) *Processor {
	if maxHeight <= 0 {
		maxHeight = 256
	}
	return &Processor{maxHeight: maxHeight}
}

// NormalizeLogo decodes data, scales it down to the max height keeping the
// aspect ratio and re-encodes it as PNG. Smaller images are not enlarged.
func (p *Processor) NormalizeLogo(data []byte) (*Logo, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dy() > p.maxHeight {
		img = imaging.Resize(img, 0, p.maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}

	return &Logo{
		Data:   buf.Bytes(),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
