package processor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIF format support
	"image/jpeg"
	_ "image/png" // PNG format support

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/genricoloni/wallrot/internal/domain"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/webp" // WebP format support
)

const fitQuality = 92

// InspectorConfig holds validation and preprocessing options
type InspectorConfig struct {
	MinWidth  int
	MinHeight int
	// Fit resizes and crops images to the screen resolution before saving
	Fit bool
}

// ImageInspector validates downloaded payloads by decoding their content
type ImageInspector struct {
	logger *zap.Logger
	res    *domain.ScreenResolution // Injected automatically by Fx
	config InspectorConfig
}

// NewImageInspector creates a new content-based image inspector
func NewImageInspector(logger *zap.Logger, res *domain.ScreenResolution, cfg InspectorConfig) *ImageInspector {
	return &ImageInspector{
		logger: logger,
		res:    res,
		config: cfg,
	}
}

// Inspect decodes the image header and checks the dimensions
func (p *ImageInspector) Inspect(data []byte) (domain.ImageInfo, error) {
	if len(data) == 0 {
		return domain.ImageInfo{}, fmt.Errorf("%w: empty payload", domain.ErrNotAnImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.ImageInfo{}, fmt.Errorf("%w: %v", domain.ErrNotAnImage, err)
	}

	if cfg.Width == 0 || cfg.Height == 0 {
		return domain.ImageInfo{}, fmt.Errorf("%w: invalid dimensions %dx%d", domain.ErrNotAnImage, cfg.Width, cfg.Height)
	}

	if cfg.Width < p.config.MinWidth || cfg.Height < p.config.MinHeight {
		return domain.ImageInfo{}, fmt.Errorf("%w: %dx%d is below minimum %dx%d",
			domain.ErrNotAnImage, cfg.Width, cfg.Height, p.config.MinWidth, p.config.MinHeight)
	}

	info := domain.ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}
	p.logger.Debug("Image inspected",
		zap.String("format", format),
		zap.Int("w", cfg.Width),
		zap.Int("h", cfg.Height),
		zap.String("size", humanize.Bytes(uint64(len(data)))))
	return info, nil
}

// Prepare fills the image to the screen resolution when Fit is enabled.
// Otherwise the payload is returned untouched.
func (p *ImageInspector) Prepare(data []byte, info domain.ImageInfo) ([]byte, domain.ImageInfo, error) {
	if !p.config.Fit || p.res == nil || p.res.Width <= 0 || p.res.Height <= 0 {
		return data, info, nil
	}
	if info.Width == p.res.Width && info.Height == p.res.Height {
		return data, info, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, info, fmt.Errorf("failed to decode image: %w", err)
	}

	p.logger.Debug("Fitting image to screen",
		zap.Int("w", p.res.Width),
		zap.Int("h", p.res.Height))
	fitted := imaging.Fill(img, p.res.Width, p.res.Height, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, fitted, &jpeg.Options{Quality: fitQuality}); err != nil {
		return nil, info, fmt.Errorf("failed to encode result: %w", err)
	}

	return buf.Bytes(), domain.ImageInfo{Format: "jpeg", Width: p.res.Width, Height: p.res.Height}, nil
}

// Extension returns the file extension for a decoded image format
func Extension(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "png", "gif", "webp", "bmp":
		return "." + format
	default:
		return ".jpg"
	}
}
