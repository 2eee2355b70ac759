package processor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/genricoloni/wallrot/internal/domain"
	"go.uber.org/zap"
)

func TestImageInspector_Inspect(t *testing.T) {
	tests := []struct {
		name           string
		imageData      []byte
		config         InspectorConfig
		expectNotImage bool
		expectedFormat string
		expectedWidth  int
	}{
		{
			name:           "Success - Valid JPEG",
			imageData:      createTestJPEG(100, 80, color.RGBA{R: 255, A: 255}),
			expectedFormat: "jpeg",
			expectedWidth:  100,
		},
		{
			name:           "Success - Valid PNG",
			imageData:      createTestPNG(64, 64),
			expectedFormat: "png",
			expectedWidth:  64,
		},
		{
			name:           "Error - HTML Error Page",
			imageData:      []byte("<html><body>rate limited</body></html>"),
			expectNotImage: true,
		},
		{
			name:           "Error - Empty Data",
			imageData:      []byte{},
			expectNotImage: true,
		},
		{
			name:           "Error - Corrupted JPEG",
			imageData:      []byte{0xFF, 0xD8, 0xFF, 0x00, 0x00}, // Partial JPEG header
			expectNotImage: true,
		},
		{
			name:           "Error - Below Minimum Size",
			imageData:      createTestJPEG(10, 10, color.RGBA{G: 255, A: 255}),
			config:         InspectorConfig{MinWidth: 640, MinHeight: 360},
			expectNotImage: true,
		},
		{
			name:           "Edge Case - Exactly Minimum Size",
			imageData:      createTestJPEG(64, 36, color.RGBA{B: 255, A: 255}),
			config:         InspectorConfig{MinWidth: 64, MinHeight: 36},
			expectedFormat: "jpeg",
			expectedWidth:  64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inspector := NewImageInspector(zap.NewNop(), &domain.ScreenResolution{Width: 1920, Height: 1080}, tt.config)
			info, err := inspector.Inspect(tt.imageData)

			if tt.expectNotImage {
				if !errors.Is(err, domain.ErrNotAnImage) {
					t.Fatalf("expected ErrNotAnImage, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.Format != tt.expectedFormat {
				t.Errorf("expected format %s, got %s", tt.expectedFormat, info.Format)
			}
			if info.Width != tt.expectedWidth {
				t.Errorf("expected width %d, got %d", tt.expectedWidth, info.Width)
			}
		})
	}
}

func TestImageInspector_Prepare(t *testing.T) {
	res := &domain.ScreenResolution{Width: 320, Height: 180}
	data := createTestJPEG(100, 100, color.RGBA{R: 255, G: 255, A: 255})

	t.Run("Fit disabled returns input", func(t *testing.T) {
		inspector := NewImageInspector(zap.NewNop(), res, InspectorConfig{})
		info := domain.ImageInfo{Format: "jpeg", Width: 100, Height: 100}

		out, outInfo, err := inspector.Prepare(data, info)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Error("expected payload to be unchanged")
		}
		if outInfo != info {
			t.Errorf("expected info %+v, got %+v", info, outInfo)
		}
	})

	t.Run("Fit enabled resizes to screen", func(t *testing.T) {
		inspector := NewImageInspector(zap.NewNop(), res, InspectorConfig{Fit: true})

		out, outInfo, err := inspector.Prepare(data, domain.ImageInfo{Format: "jpeg", Width: 100, Height: 100})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		img, _, err := image.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("result is not a valid image: %v", err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != 320 || bounds.Dy() != 180 {
			t.Errorf("expected 320x180, got %dx%d", bounds.Dx(), bounds.Dy())
		}
		if outInfo.Width != 320 || outInfo.Height != 180 || outInfo.Format != "jpeg" {
			t.Errorf("unexpected info %+v", outInfo)
		}
	})
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"jpeg": ".jpg",
		"png":  ".png",
		"webp": ".webp",
		"gif":  ".gif",
		"bmp":  ".bmp",
	}
	for format, want := range tests {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%s): expected %s, got %s", format, want, got)
		}
	}
}

// createTestJPEG generates a simple JPEG image for testing
func createTestJPEG(width, height int, col color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, col)
		}
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 80}); err != nil {
		panic("failed to create test JPEG: " + err.Error())
	}
	return buf.Bytes()
}

func createTestPNG(width, height int) []byte {
	img := image.NewGray(image.Rect(0, 0, width, height))
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		panic("failed to create test PNG: " + err.Error())
	}
	return buf.Bytes()
}
