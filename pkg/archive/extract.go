package archive

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/kerbaras/comics/pkg/data"
)

// Extractor walks one archive format and returns its pages in reading order.
//
// Extraction is all-or-nothing: on error no pages are returned. An archive
// without matching entries yields an empty, non-nil slice.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]*data.Page, error)
}

// decodeFunc turns one entry into one or more pages
type decodeFunc func(name string, raw []byte) ([]*data.Page, error)

func stillDecoder(d Decoder) decodeFunc {
	return func(name string, raw []byte) ([]*data.Page, error) {
		page, err := d.DecodeStill(name, raw)
		if err != nil {
			return nil, err
		}
		return []*data.Page{page}, nil
	}
}

func frameDecoder(d Decoder) decodeFunc {
	return d.DecodeFrames
}

// decodedEntry keeps an entry's pages together until the archive is fully read
type decodedEntry struct {
	entry Entry
	pages []*data.Page
}

// assemble orders the decoded entries and flattens their pages
func assemble(o Ordering, items []decodedEntry) []*data.Page {
	entries := make([]Entry, len(items))
	byIndex := make(map[int][]*data.Page, len(items))
	total := 0
	for i, item := range items {
		entries[i] = item.entry
		byIndex[item.entry.Index] = item.pages
		total += len(item.pages)
	}
	o.Sort(entries)

	pages := make([]*data.Page, 0, total)
	for _, e := range entries {
		pages = append(pages, byIndex[e.Index]...)
	}
	return pages
}

// openError classifies a failure to open a container
func openError(path string, err error, invalid ...error) error {
	for _, target := range invalid {
		if errors.Is(err, target) {
			return formatError(path, err)
		}
	}
	return archiveError(path, err)
}

// streamError classifies a failure while walking a sequential container
func streamError(path string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return archiveError(path, err)
	}
	return formatError(path, err)
}

// withPath stamps the archive path onto an error raised below the extractor
func withPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
	}
	return err
}

func canceled(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return archiveError(path, err)
	}
	return nil
}
