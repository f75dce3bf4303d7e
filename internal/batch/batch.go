package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

// Summary reports the outcome of a Run.
type Summary struct {
	Results   []FileResult
	Succeeded int
	Failed    int
	Rejected  int
}

// Run is the main application logic. It analyzes the input file, or every
// entry of the input directory, with at most cfg.Parallelism images in
// flight. A failing image never stops the others; Run returns an error after
// all files have completed if any of them failed.
func Run(ctx context.Context, cfg *Config) (*Summary, error) {
	analysisCfg, err := cfg.AnalysisConfig()
	if err != nil {
		return nil, err
	}

	tasks, outputDir, err := collectTasks(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}

	workers := cfg.Parallelism
	if workers < 1 {
		workers = 1
	}
	log.Info().
		Str("input", cfg.InputPath).
		Str("output", outputDir).
		Int("files", len(tasks)).
		Int("parallelism", workers).
		Msg("starting analysis")

	jobs := make(chan task)
	results := make(chan FileResult, len(tasks))

	var processed int64
	total := int64(len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker(&wg, jobs, results, outputDir, analysisCfg, cfg.Quality, &processed)
	}

	var spinnerWg sync.WaitGroup
	done := make(chan struct{})
	startTime := time.Now()

	if !cfg.Quiet {
		spinnerWg.Add(1)
		go func() {
			defer spinnerWg.Done()
			s := spinner.New()
			s.Spinner = spinner.Dot
			s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()

			for {
				select {
				case <-done:
					n := atomic.LoadInt64(&processed)
					fmt.Printf("\r%s Analysis complete. %d/%d images processed.\n", "✓", n, total)
					return
				case <-ticker.C:
					s, _ = s.Update(spinner.TickMsg{})
					n := atomic.LoadInt64(&processed)
					elapsed := time.Since(startTime).Seconds()
					var ips float64
					if elapsed > 0 {
						ips = float64(n) / elapsed
					}
					fmt.Printf("\r%s Analyzing images %d/%d... (%.2f images/s)", s.View(), n, total, ips)
				}
			}
		}()
	}

	var dispatchErr error
dispatch:
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			dispatchErr = err
			break
		}
		select {
		case <-ctx.Done():
			dispatchErr = ctx.Err()
			break dispatch
		case jobs <- t:
		}
	}
	close(jobs)

	wg.Wait()
	close(done)
	spinnerWg.Wait()
	close(results)

	summary := &Summary{}
	for res := range results {
		summary.Results = append(summary.Results, res)
		switch {
		case res.Err == nil:
			summary.Succeeded++
			log.Info().Str("file", res.Name).Dur("duration", res.Duration).Int("outliers", res.Outliers).Msg("image processed")
		case errors.Is(res.Err, ErrNotImage):
			summary.Rejected++
			log.Warn().Str("file", res.Name).Err(res.Err).Msg("skipped")
		default:
			summary.Failed++
			log.Error().Str("file", res.Name).Dur("duration", res.Duration).Err(res.Err).Msg("image failed")
		}
	}

	duration := time.Since(startTime)
	log.Info().
		Dur("duration", duration).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("rejected", summary.Rejected).
		Msg("analysis finished")

	if !cfg.Quiet {
		printSummary(summary, duration)
	}

	if dispatchErr != nil {
		return summary, fmt.Errorf("analysis interrupted: %w", dispatchErr)
	}
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d images failed", summary.Failed, len(summary.Results))
	}
	return summary, nil
}

// collectTasks lists the files to process and resolves the output
// directory. A single input file is processed regardless of its extension.
func collectTasks(cfg *Config) ([]task, string, error) {
	info, err := os.Stat(cfg.InputPath)
	if err != nil {
		return nil, "", fmt.Errorf("could not read input: %w", err)
	}

	outputDir := cfg.OutputDirectory
	if !info.IsDir() {
		if outputDir == "" {
			outputDir = filepath.Dir(cfg.InputPath)
		}
		return []task{{path: cfg.InputPath}}, outputDir, nil
	}

	if outputDir == "" {
		outputDir = cfg.InputPath
	}
	entries, err := os.ReadDir(cfg.InputPath)
	if err != nil {
		return nil, "", fmt.Errorf("could not list input directory: %w", err)
	}
	tasks := make([]task, 0, len(entries))
	for _, e := range entries {
		tasks = append(tasks, task{path: filepath.Join(cfg.InputPath, e.Name()), filter: true})
	}
	return tasks, outputDir, nil
}

func printSummary(summary *Summary, duration time.Duration) {
	nameStyle := lipgloss.NewStyle().Bold(true)
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	durationStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("202"))

	for _, res := range summary.Results {
		line := fmt.Sprintf("%s: %.3fs", nameStyle.Render(res.Name), res.Duration.Seconds())
		if res.Err != nil {
			line += " " + errStyle.Render(res.Err.Error())
		} else {
			line += " " + okStyle.Render(fmt.Sprintf("%d outliers", res.Outliers))
		}
		fmt.Println(line)
	}
	fmt.Printf("Total processing time: %s\n", durationStyle.Render(fmt.Sprintf("%.4fs", duration.Seconds())))
}
