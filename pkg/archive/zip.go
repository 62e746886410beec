package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	"github.com/kerbaras/comics/pkg/data"
)

// ZipExtractor reads a ZIP container of loose still images (.cbz / .zip)
type ZipExtractor struct {
	Ordering Ordering
	Decoder  Decoder
}

func NewZipExtractor(ordering Ordering, decoder Decoder) *ZipExtractor {
	return &ZipExtractor{Ordering: ordering, Decoder: decoder}
}

func (x *ZipExtractor) Extract(ctx context.Context, path string) ([]*data.Page, error) {
	return extractZip(ctx, path, IsStillImage, x.Ordering, stillDecoder(x.Decoder))
}

// GifSequenceExtractor reads a ZIP container of multi-frame GIFs.
//
// Frames keep their order inside one GIF; several GIFs are concatenated in
// the order the archive lists them.
type GifSequenceExtractor struct {
	Decoder Decoder
}

func NewGifSequenceExtractor(decoder Decoder) *GifSequenceExtractor {
	return &GifSequenceExtractor{Decoder: decoder}
}

func (x *GifSequenceExtractor) Extract(ctx context.Context, path string) ([]*data.Page, error) {
	return extractZip(ctx, path, IsFrameSequence, EnumerationOrder, frameDecoder(x.Decoder))
}

func extractZip(ctx context.Context, path string, match func(string) bool, ordering Ordering, decode decodeFunc) ([]*data.Page, error) {
	if err := canceled(ctx, path); err != nil {
		return nil, err
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, openError(path, err, zip.ErrFormat, zip.ErrAlgorithm)
	}
	defer reader.Close()

	var items []decodedEntry
	for i, file := range reader.File {
		if file.FileInfo().IsDir() || !match(file.Name) {
			continue
		}
		if err := canceled(ctx, path); err != nil {
			return nil, err
		}

		raw, err := readZipFile(file)
		if err != nil {
			return nil, withPath(decodeError(file.Name, err), path)
		}

		pages, err := decode(file.Name, raw)
		if err != nil {
			return nil, withPath(err, path)
		}
		items = append(items, decodedEntry{entry: Entry{Name: file.Name, Index: i}, pages: pages})
	}

	return assemble(ordering, items), nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}
	return raw, nil
}
