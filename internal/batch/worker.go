package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/klawil/image-processor/internal/anomaly"
)

// ErrNotImage is reported for directory entries that are not .jpg or .png
// files.
var ErrNotImage = errors.New("not an image")

// FileResult is the outcome of processing one input file.
type FileResult struct {
	Name     string
	Output   string
	Duration time.Duration
	Outliers int
	Err      error
}

// task is a single file handed to a worker.
type task struct {
	path string
	// filter rejects files without an accepted image extension.
	filter bool
}

// worker is a goroutine that receives tasks, runs the analysis on each file
// and sends the outcome to the results channel.
func worker(wg *sync.WaitGroup, jobs <-chan task, results chan<- FileResult, outputDir string, cfg anomaly.Config, quality int, processed *int64) {
	defer wg.Done()
	for t := range jobs {
		start := time.Now()
		res := FileResult{Name: filepath.Base(t.path)}

		if t.filter && !isImageFile(t.path) {
			res.Err = fmt.Errorf("%w (%s)", ErrNotImage, filepath.Ext(t.path))
		} else {
			res.Output = outputPath(t.path, outputDir)
			var analysis *anomaly.Result
			analysis, res.Err = ProcessFile(t.path, res.Output, cfg, quality)
			if analysis != nil {
				res.Outliers = len(analysis.Outliers)
			}
		}

		res.Duration = time.Since(start)
		results <- res
		atomic.AddInt64(processed, 1)
	}
}

// ProcessFile decodes the image at path, analyzes it and writes the rendered
// map to output as a JPEG.
func ProcessFile(path, output string, cfg anomaly.Config, quality int) (*anomaly.Result, error) {
	grid, err := loadGrid(path)
	if err != nil {
		return nil, err
	}

	res, err := anomaly.Analyze(grid, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", path, err)
	}
	logResult(path, res)

	start := time.Now()
	if err := saveMap(res.Image, output, quality); err != nil {
		return res, err
	}
	log.Debug().Str("file", path).Str("stage", "write").Dur("duration", time.Since(start)).Msg("stage complete")
	return res, nil
}

func logResult(path string, res *anomaly.Result) {
	for _, s := range res.Stages {
		log.Debug().Str("file", path).Str("stage", s.Name).Dur("duration", s.Duration).Msg("stage complete")
	}
	if res.Render.Missing > 0 {
		log.Warn().
			Err(anomaly.ErrShapeMismatch).
			Str("file", path).
			Int("cells", res.Render.Missing).
			Msg("difference grid missing cells, rendered from maximum score")
	}
	log.Debug().
		Str("file", path).
		Float64("min_score", res.MinScore).
		Float64("max_score", res.MaxScore).
		Float64("mean_score", res.MeanScore).
		Float64("stddev_score", res.StdDevScore).
		Float64("mean_value", res.Render.Mean).
		Int("outliers", len(res.Outliers)).
		Msg("difference map statistics")
}
