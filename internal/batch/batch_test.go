package batch

import (
	"context"
	"image"
	"image/color"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klawil/image-processor/internal/anomaly"
)

func testConfig(input string) *Config {
	return &Config{
		InputPath:   input,
		BlurFactor:  1,
		Radius:      1,
		Parallelism: 2,
		Quality:     90,
		MarkerColor: "#ff0000",
		Quiet:       true,
	}
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return img
}

func TestRunDirectory(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writePNG(t, filepath.Join(in, "flat.png"), solidImage(8, 6, color.NRGBA{R: 128, G: 128, B: 128, A: 255}))
	spot := solidImage(9, 9, color.NRGBA{A: 255})
	spot.SetNRGBA(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	writePNG(t, filepath.Join(in, "SPOT.PNG"), spot)
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.png"), []byte("garbage"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("hello"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(in, "nested"), 0755))

	cfg := testConfig(in)
	cfg.OutputDirectory = out
	summary, err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 5 images failed")

	require.NotNil(t, summary)
	assert.Len(t, summary.Results, 5)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Rejected)

	for _, res := range summary.Results {
		switch res.Name {
		case "broken.png":
			assert.ErrorIs(t, res.Err, anomaly.ErrDecode)
		case "notes.txt", "nested":
			assert.ErrorIs(t, res.Err, ErrNotImage)
		default:
			assert.NoError(t, res.Err, res.Name)
		}
	}

	flat := decodeFile(t, filepath.Join(out, "flat-map.jpg"))
	assert.Equal(t, image.Rect(0, 0, 8, 6), flat.Bounds())
	r, g, b, _ := flat.At(3, 3).RGBA()
	assert.Greater(t, r>>8, uint32(250))
	assert.Greater(t, g>>8, uint32(250))
	assert.Greater(t, b>>8, uint32(250))

	spotMap := decodeFile(t, filepath.Join(out, "SPOT-map.jpg"))
	assert.Equal(t, image.Rect(0, 0, 9, 9), spotMap.Bounds())
	center, _, _, _ := spotMap.At(4, 4).RGBA()
	corner, _, _, _ := spotMap.At(0, 0).RGBA()
	assert.Less(t, center, corner)

	_, err = os.Stat(filepath.Join(out, "broken-map.jpg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(out, "notes-map.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunDirectoryDefaultsOutputToInput(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), solidImage(4, 4, color.NRGBA{R: 5, A: 255}))

	summary, err := Run(context.Background(), testConfig(in))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.FileExists(t, filepath.Join(in, "a-map.jpg"))
}

func TestRunSingleFile(t *testing.T) {
	in := t.TempDir()
	path := filepath.Join(in, "photo.png")
	writePNG(t, path, solidImage(12, 10, color.NRGBA{R: 40, G: 50, B: 60, A: 255}))

	cfg := testConfig(path)
	cfg.BlurFactor = 4
	summary, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)

	img := decodeFile(t, filepath.Join(in, "photo-map.jpg"))
	assert.Equal(t, image.Rect(0, 0, 3, 3), img.Bounds())
}

func TestRunSingleFileSkipsExtensionFilter(t *testing.T) {
	in := t.TempDir()
	path := filepath.Join(in, "photo.image")
	writePNG(t, path, solidImage(3, 3, color.NRGBA{A: 255}))

	summary, err := Run(context.Background(), testConfig(path))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.FileExists(t, filepath.Join(in, "photo-map.jpg"))
}

func TestRunMarksOutliers(t *testing.T) {
	in := t.TempDir()
	path := filepath.Join(in, "spot.png")
	spot := solidImage(30, 30, color.NRGBA{A: 255})
	spot.SetNRGBA(15, 15, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	writePNG(t, path, spot)

	cfg := testConfig(path)
	cfg.Invert = true
	cfg.Outlier = 250
	cfg.Quality = 100
	summary, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, 1, summary.Results[0].Outliers)

	img := decodeFile(t, filepath.Join(in, "spot-map.jpg"))
	// Chroma subsampling blends the thin ring with its black surroundings,
	// so only check that the ring pixel came out clearly red.
	r, g, _, _ := img.At(22, 15).RGBA()
	assert.Greater(t, r>>8, uint32(120))
	assert.Greater(t, r>>8, g>>8+60)
}

func TestRunCanceled(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), solidImage(2, 2, color.NRGBA{A: 255}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := Run(ctx, testConfig(in))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Results)
}

func TestRunInvalidMarkerColor(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.MarkerColor = "#zzzzzz"
	_, err := Run(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRunMissingInput(t *testing.T) {
	_, err := Run(context.Background(), testConfig(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, err)
}

func TestAnalysisConfig(t *testing.T) {
	cfg := testConfig("x")
	cfg.Outlier = 200
	cfg.Invert = true
	cfg.MarkerColor = "#00ff80"

	got, err := cfg.AnalysisConfig()
	require.NoError(t, err)
	assert.Equal(t, anomaly.Config{
		BlurFactor:       1,
		Radius:           1,
		OutlierThreshold: 200,
		Invert:           true,
		MarkerColor:      color.RGBA{R: 0, G: 255, B: 128, A: 255},
	}, got)

	cfg.MarkerColor = ""
	got, err = cfg.AnalysisConfig()
	require.NoError(t, err)
	assert.Equal(t, anomaly.DefaultMarkerColor, got.MarkerColor)

	cfg.Radius = 0
	_, err = cfg.AnalysisConfig()
	assert.ErrorIs(t, err, anomaly.ErrInvalidConfig)
}
