package batch

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"

	"github.com/klawil/image-processor/internal/anomaly"
)

// mapSuffix is appended to the base name of every rendered map.
const mapSuffix = "-map.jpg"

var imageExtensions = map[string]bool{
	".jpg": true,
	".png": true,
}

// isImageFile reports whether name has an extension the batch path accepts.
func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// outputPath returns where the map for the image at path is written.
func outputPath(path, outputDir string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+mapSuffix)
}

// loadGrid opens and decodes an image from the given file path and returns
// its pixels.
func loadGrid(path string) (*anomaly.Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, anomaly.NewDecodeError(path, fmt.Errorf("could not open file: %w", err))
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, anomaly.NewDecodeError(path, fmt.Errorf("could not decode image: %w", err))
	}
	return anomaly.GridFromImage(img), nil
}

// saveMap encodes img as a JPEG at the given quality.
func saveMap(img image.Image, path string, quality int) (err error) {
	outFile, err := os.Create(path)
	if err != nil {
		return anomaly.NewEncodeError(path, fmt.Errorf("could not create file: %w", err))
	}
	defer func() {
		if cerr := outFile.Close(); cerr != nil && err == nil {
			err = anomaly.NewEncodeError(path, cerr)
		}
	}()

	if err := jpeg.Encode(outFile, img, &jpeg.Options{Quality: quality}); err != nil {
		return anomaly.NewEncodeError(path, fmt.Errorf("could not encode jpeg: %w", err))
	}
	return nil
}
