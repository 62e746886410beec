package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kerbaras/comics/pkg/data"
)

// Format names the three container families a chapter can be stored in
type Format string

const (
	FormatZip         Format = "zip"
	FormatRar         Format = "rar"
	FormatGifSequence Format = "gif-sequence"
)

// suffixes maps each recognised archive extension (lower case) to its format
var suffixes = map[string]Format{
	".cbz":      FormatZip,
	".zip":      FormatZip,
	".cbr":      FormatRar,
	".rar":      FormatRar,
	".nhlcomic": FormatGifSequence,
	".cbg":      FormatGifSequence,
}

// DetectFormat picks the container format from the file name, ignoring case
func DetectFormat(path string) (Format, bool) {
	format, ok := suffixes[strings.ToLower(filepath.Ext(path))]
	return format, ok
}

// Supported reports whether path names an archive the dispatcher can open
func Supported(path string) bool {
	_, ok := DetectFormat(path)
	return ok
}

// Options tunes the extractors built by NewDispatcher
type Options struct {
	ZipOrdering Ordering
	RarOrdering Ordering
	MaxPixels   int
}

// DefaultOptions reproduces the historic per-format page order
func DefaultOptions() Options {
	return Options{
		ZipOrdering: Natural,
		RarOrdering: Lexicographic,
		MaxPixels:   DefaultMaxPixels,
	}
}

// Dispatcher routes a chapter's backing file to the matching extractor.
// It holds no state besides the extractor table.
type Dispatcher struct {
	extractors map[Format]Extractor
}

func NewDispatcher(opts Options) *Dispatcher {
	decoder := Decoder{MaxPixels: opts.MaxPixels}
	return &Dispatcher{
		extractors: map[Format]Extractor{
			FormatZip:         NewZipExtractor(opts.ZipOrdering, decoder),
			FormatRar:         NewRarExtractor(opts.RarOrdering, decoder),
			FormatGifSequence: NewGifSequenceExtractor(decoder),
		},
	}
}

// WithExtractor returns a copy of the dispatcher using x for format
func (d *Dispatcher) WithExtractor(format Format, x Extractor) *Dispatcher {
	extractors := make(map[Format]Extractor, len(d.extractors))
	for k, v := range d.extractors {
		extractors[k] = v
	}
	extractors[format] = x
	return &Dispatcher{extractors: extractors}
}

// Extract decodes the pages of the archive at file
func (d *Dispatcher) Extract(ctx context.Context, file string) ([]*data.Page, error) {
	if file == "" {
		return nil, configurationError("no file selected")
	}

	format, ok := DetectFormat(file)
	if !ok {
		return nil, &Error{Kind: KindUnsupportedFormat, Path: file, Err: fmt.Errorf("unrecognized suffix %q", filepath.Ext(file))}
	}

	x, ok := d.extractors[format]
	if !ok {
		return nil, &Error{Kind: KindUnsupportedFormat, Path: file, Err: fmt.Errorf("no extractor for %s", format)}
	}

	return x.Extract(ctx, file)
}

// Dispatch returns a copy of chapter with its pages decoded from file.
// The chapter passed in is never modified.
func (d *Dispatcher) Dispatch(ctx context.Context, file string, chapter *data.Chapter) (*data.Chapter, error) {
	if file == "" {
		return nil, configurationError("no file selected")
	}
	if chapter == nil {
		return nil, configurationError("no chapter given")
	}

	pages, err := d.Extract(ctx, file)
	if err != nil {
		return nil, err
	}

	loaded := *chapter
	loaded.Pages = pages
	return &loaded, nil
}
