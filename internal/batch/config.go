package batch

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/klawil/image-processor/internal/anomaly"
)

// Config holds all the configuration parameters for the application,
// parsed from command-line flags.
type Config struct {
	InputPath       string
	OutputDirectory string
	BlurFactor      int
	Radius          int
	Outlier         int
	Invert          bool
	Parallelism     int
	Quality         int
	MarkerColor     string
	Quiet           bool
}

// AnalysisConfig converts the command-line settings into the per-image
// analysis configuration.
func (c *Config) AnalysisConfig() (anomaly.Config, error) {
	cfg := anomaly.Config{
		BlurFactor:       c.BlurFactor,
		Radius:           c.Radius,
		OutlierThreshold: c.Outlier,
		Invert:           c.Invert,
		MarkerColor:      anomaly.DefaultMarkerColor,
	}
	if c.MarkerColor != "" {
		marker, err := parseMarkerColor(c.MarkerColor)
		if err != nil {
			return anomaly.Config{}, err
		}
		cfg.MarkerColor = marker
	}
	return cfg, cfg.Validate()
}

func parseMarkerColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid marker color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
