package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeLogoScalesDown(t *testing.T) {
	logo, err := NewProcessor(100).NormalizeLogo(encodeJPEG(t, 400, 200))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if logo.Height != 100 || logo.Width != 200 {
		t.Fatalf("size = %dx%d, want 200x100", logo.Width, logo.Height)
	}
	if _, err := png.Decode(bytes.NewReader(logo.Data)); err != nil {
		t.Fatalf("output is not png: %v", err)
	}
}

func TestNormalizeLogoKeepsSmallImages(t *testing.T) {
	logo, err := NewProcessor(256).NormalizeLogo(encodeJPEG(t, 40, 20))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if logo.Width != 40 || logo.Height != 20 {
		t.Fatalf("size = %dx%d", logo.Width, logo.Height)
	}
}

func TestNormalizeLogoRejectsGarbage(t *testing.T) {
	if _, err := NewProcessor(0).NormalizeLogo([]byte("nope")); err == nil {
		t.Fatalf("expected decode error")
	}
}
