package anomaly

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Config controls a single analysis.
type Config struct {
	// BlurFactor is the block size used to downsample before scoring.
	// 1 disables downsampling.
	BlurFactor int
	// Radius is the half-width of the neighborhood window.
	Radius int
	// OutlierThreshold marks every rendered value at or above it. 0 disables
	// marking.
	OutlierThreshold int
	// Invert renders large differences bright instead of dark.
	Invert bool
	// MarkerColor is the color of outlier rings.
	MarkerColor color.RGBA
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		BlurFactor:  1,
		Radius:      1,
		MarkerColor: DefaultMarkerColor,
	}
}

// Validate reports whether c can be used by Analyze.
func (c Config) Validate() error {
	if c.BlurFactor < 1 {
		return fmt.Errorf("%w: blur factor must be at least 1, got %d", ErrInvalidConfig, c.BlurFactor)
	}
	if c.Radius < 1 {
		return fmt.Errorf("%w: radius must be at least 1, got %d", ErrInvalidConfig, c.Radius)
	}
	if c.OutlierThreshold < 0 || c.OutlierThreshold > 255 {
		return fmt.Errorf("%w: outlier threshold must be in [0,255], got %d", ErrInvalidConfig, c.OutlierThreshold)
	}
	return nil
}

// StageTiming is the wall time spent in one pipeline stage.
type StageTiming struct {
	Name     string
	Duration time.Duration
}

// Result is the output of Analyze.
type Result struct {
	Image    *image.RGBA
	Outliers []image.Point
	Render   RenderStats
	// MinScore and MaxScore are the raw score bounds used for normalization.
	MinScore float64
	MaxScore float64
	// MeanScore and StdDevScore summarize the raw scores.
	MeanScore   float64
	StdDevScore float64
	Stages      []StageTiming
}

// Analyze runs the full pipeline on g: downsample, score, render and mark.
// Each stage consumes the previous stage's output.
func Analyze(g *Grid, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g == nil || g.width == 0 || g.height == 0 {
		return nil, fmt.Errorf("%w: empty pixel grid", ErrInvalidConfig)
	}

	res := &Result{}
	timed := func(name string, fn func()) {
		start := time.Now()
		fn()
		res.Stages = append(res.Stages, StageTiming{Name: name, Duration: time.Since(start)})
	}

	if cfg.BlurFactor > 1 {
		timed("blur", func() { g = Downsample(g, cfg.BlurFactor) })
	}
	width, height := g.width, g.height

	var diff *DifferenceGrid
	timed("difference", func() { diff = Score(g, cfg.Radius) })
	g = nil

	res.MinScore, res.MaxScore = diff.Min, diff.Max
	if scores := diff.Scores(); len(scores) > 1 {
		res.MeanScore, res.StdDevScore = stat.MeanStdDev(scores, nil)
	} else {
		res.MeanScore = scores[0]
	}

	timed("render", func() { res.Image, res.Render = Render(diff, width, height, cfg.Invert) })
	diff = nil

	// A flat map has no outliers: every cell normalizes to 0.
	if cfg.OutlierThreshold > 0 && res.MaxScore > res.MinScore {
		timed("mark", func() { res.Outliers = MarkOutliers(res.Image, cfg.OutlierThreshold, cfg.MarkerColor) })
	}
	return res, nil
}
