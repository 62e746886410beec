package archive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/nwaples/rardecode/v2"
)

// RarExtractor reads a RAR container of still images (.cbr / .rar)
type RarExtractor struct {
	Ordering Ordering
	Decoder  Decoder
}

func NewRarExtractor(ordering Ordering, decoder Decoder) *RarExtractor {
	return &RarExtractor{Ordering: ordering, Decoder: decoder}
}

// rarStream is the part of rardecode.Reader the extractor walks
type rarStream interface {
	Next() (*rardecode.FileHeader, error)
	io.Reader
}

func (x *RarExtractor) Extract(ctx context.Context, path string) ([]*data.Page, error) {
	if err := canceled(ctx, path); err != nil {
		return nil, err
	}

	rc, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, streamError(path, err)
	}
	defer rc.Close()

	return x.extractStream(ctx, path, rc)
}

// extractStream decodes entries as the stream yields them. RAR is sequential, so
// pages are ordered once every entry has been read.
func (x *RarExtractor) extractStream(ctx context.Context, path string, stream rarStream) ([]*data.Page, error) {
	decode := stillDecoder(x.Decoder)

	var items []decodedEntry
	for index := 0; ; index++ {
		header, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, streamError(path, err)
		}
		if header.IsDir || !IsStillImage(header.Name) {
			continue
		}
		if err := canceled(ctx, path); err != nil {
			return nil, err
		}

		raw, err := io.ReadAll(stream)
		if err != nil {
			return nil, withPath(decodeError(header.Name, fmt.Errorf("failed to read entry: %w", err)), path)
		}

		pages, err := decode(header.Name, raw)
		if err != nil {
			return nil, withPath(err, path)
		}
		items = append(items, decodedEntry{entry: Entry{Name: header.Name, Index: index}, pages: pages})
	}

	return assemble(x.Ordering, items), nil
}
