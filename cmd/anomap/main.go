package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/klawil/image-processor/internal/batch"
	"github.com/klawil/image-processor/internal/logger"
)

func main() {
	cfg, logFilePath, logLevel := parseFlags()

	logFile, err := logger.Init(logFilePath, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	if err = validateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("configuration error")
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		logFile.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err = batch.Run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("application error")
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		stop()
		logFile.Close()
		os.Exit(1)
	}
}

// parseFlags defines and parses command-line flags, returning them
// in a Config struct along with the logging settings.
func parseFlags() (*batch.Config, string, string) {
	cfg := &batch.Config{}
	var logFilePath, logLevel string

	pflag.StringVarP(&cfg.InputPath, "input", "i", "", "Path to an image or a directory of images.")
	pflag.StringVarP(&cfg.OutputDirectory, "output", "o", "", "Directory to save difference maps. Defaults to the input's directory.")
	pflag.IntVarP(&cfg.BlurFactor, "blur", "b", 1, "Block size used to average pixels before comparing (1 disables).")
	pflag.IntVarP(&cfg.Radius, "range", "r", 1, "Radius of the neighborhood each pixel is compared against.")
	pflag.IntVarP(&cfg.Outlier, "outlier", "m", 0, "Mark pixels whose map value is at least this (0-255, 0 disables).")
	pflag.BoolVar(&cfg.Invert, "invert", false, "Render large differences white instead of black.")
	pflag.IntVarP(&cfg.Parallelism, "parallelism", "p", 1, "Number of images to process at the same time.")
	pflag.IntVarP(&cfg.Quality, "quality", "q", 60, "JPEG quality of the difference maps (1-100).")
	pflag.StringVar(&cfg.MarkerColor, "marker-color", "#ff0000", "Hex color of outlier markers.")
	pflag.BoolVar(&cfg.Quiet, "quiet", false, "Do not print progress or a summary.")
	pflag.StringVar(&logFilePath, "log-file", "anomap.log", "Path of the log file.")
	pflag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error).")

	pflag.Parse()
	return cfg, logFilePath, logLevel
}

// validateConfig checks if the provided configuration is valid.
func validateConfig(cfg *batch.Config) error {
	if cfg.InputPath == "" {
		return fmt.Errorf("--input/-i flag is required")
	}
	if _, err := os.Stat(cfg.InputPath); os.IsNotExist(err) {
		return fmt.Errorf("input does not exist: %s", cfg.InputPath)
	}
	if cfg.BlurFactor < 1 {
		return fmt.Errorf("--blur must be a positive integer")
	}
	if cfg.Radius < 1 {
		return fmt.Errorf("--range must be a positive integer")
	}
	if cfg.Outlier < 0 || cfg.Outlier > 255 {
		return fmt.Errorf("--outlier must be between 0 and 255")
	}
	if cfg.Parallelism < 1 {
		return fmt.Errorf("--parallelism must be a positive integer")
	}
	if cfg.Quality < 1 || cfg.Quality > 100 {
		return fmt.Errorf("--quality must be between 1 and 100")
	}
	if _, err := cfg.AnalysisConfig(); err != nil {
		return err
	}
	return nil
}
