package integrations

import (
	"fmt"
	"html"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/comics/pkg/data"
)

// ExportOptions controls how decoded pages are written into the book
type ExportOptions struct {
	MaxWidth  int
	MaxHeight int
	Grayscale bool
	Contrast  float64 // Percentage passed to imaging.AdjustContrast, 0 = unchanged
	Quality   int     // JPEG quality, 0 = 85
}

type EPubExporter struct {
	outputDir string
	options   ExportOptions
}

func NewEPubExporter(outputDir string, options ExportOptions) *EPubExporter {
	if options.Quality == 0 {
		options.Quality = 85
	}
	return &EPubExporter{outputDir: outputDir, options: options}
}

// Export writes the pages of a loaded chapter into <outputDir>/<series> - <chapter>.epub
func (x *EPubExporter) Export(series *data.Series, chapter *data.Chapter) (string, error) {
	if series == nil || chapter == nil {
		return "", fmt.Errorf("series and chapter are required")
	}
	if !chapter.Loaded() {
		return "", fmt.Errorf("chapter %s is not loaded", chapter.Title)
	}
	if len(chapter.Pages) == 0 {
		return "", fmt.Errorf("chapter %s has no pages", chapter.Title)
	}

	if err := os.MkdirAll(x.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// go-epub embeds images by path, so pages are staged on disk first
	workDir, err := os.MkdirTemp("", "comics-epub-*")
	if err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	title := fmt.Sprintf("%s - %s", series.Name, chapter.Title)
	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	if series.Description != "" {
		e.SetDescription(series.Description)
	}
	e.SetLang("en")

	var body strings.Builder
	fmt.Fprintf(&body, "<h1>%s</h1>\n", html.EscapeString(chapter.Title))

	for i, page := range chapter.Pages {
		file := filepath.Join(workDir, fmt.Sprintf("%04d.jpg", i+1))
		if err := imaging.Save(x.prepare(page.Image), file, imaging.JPEGQuality(x.options.Quality)); err != nil {
			return "", fmt.Errorf("failed to write page %d: %w", i+1, err)
		}

		internalPath, err := e.AddImage(file, "")
		if err != nil {
			return "", fmt.Errorf("failed to add page %d: %w", i+1, err)
		}

		fmt.Fprintf(&body,
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>`+"\n",
			html.EscapeString(internalPath), i+1)
	}

	if _, err := e.AddSection(body.String(), chapter.Title, "", ""); err != nil {
		return "", fmt.Errorf("failed to add section: %w", err)
	}

	outputPath := filepath.Join(x.outputDir, sanitizeFilename(title)+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

// prepare fits a page inside the target size and applies the tone settings
func (x *EPubExporter) prepare(img image.Image) image.Image {
	b := img.Bounds()
	if x.options.MaxWidth > 0 && x.options.MaxHeight > 0 &&
		(b.Dx() > x.options.MaxWidth || b.Dy() > x.options.MaxHeight) {
		img = imaging.Fit(img, x.options.MaxWidth, x.options.MaxHeight, imaging.Lanczos)
	}
	if x.options.Grayscale {
		img = imaging.Grayscale(img)
	}
	if x.options.Contrast != 0 {
		img = imaging.AdjustContrast(img, x.options.Contrast)
	}
	return img
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	return result
}
