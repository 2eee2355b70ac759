package monitor

import (
	"github.com/genricoloni/wallrot/internal/domain"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

var fallbackResolution = domain.ScreenResolution{Width: 1920, Height: 1080}

// DisplayBounds reports the number of active displays and their sizes.
// Swapped in tests.
type DisplayBounds struct {
	NumActive func() int
	Size      func(index int) (width, height int)
}

var systemDisplays = DisplayBounds{
	NumActive: screenshot.NumActiveDisplays,
	Size: func(index int) (int, int) {
		b := screenshot.GetDisplayBounds(index)
		return b.Dx(), b.Dy()
	},
}

// NewScreenResolution returns the configured resolution when both values are
// set, otherwise the primary display bounds, otherwise 1920x1080
func NewScreenResolution(logger *zap.Logger, width, height int) *domain.ScreenResolution {
	return resolve(logger, width, height, systemDisplays)
}

func resolve(logger *zap.Logger, width, height int, displays DisplayBounds) *domain.ScreenResolution {
	if width > 0 && height > 0 {
		logger.Debug("Using configured screen resolution",
			zap.Int("width", width),
			zap.Int("height", height))
		return &domain.ScreenResolution{Width: width, Height: height}
	}

	n := displays.NumActive()
	if n <= 0 {
		logger.Warn("No active displays detected, falling back to 1920x1080")
		res := fallbackResolution
		return &res
	}

	// Use primary monitor (index 0)
	w, h := displays.Size(0)
	if w <= 0 || h <= 0 {
		logger.Warn("Primary display reported empty bounds, falling back to 1920x1080")
		res := fallbackResolution
		return &res
	}

	res := &domain.ScreenResolution{Width: w, Height: h}
	logger.Info("Screen resolution detected",
		zap.Int("width", res.Width),
		zap.Int("height", res.Height))

	return res
}
