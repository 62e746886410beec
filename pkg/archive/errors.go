package archive

import (
	"fmt"
	"strings"
)

// Kind classifies a chapter load failure
type Kind int

const (
	KindConfiguration Kind = iota + 1 // missing file or chapter before dispatch
	KindUnsupportedFormat
	KindArchive // container open/read failure
	KindFormat  // structurally invalid container
	KindDecode  // one resource failed to decode
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindArchive:
		return "archive error"
	case KindFormat:
		return "format error"
	case KindDecode:
		return "decode error"
	default:
		return "unknown error"
	}
}

// Error is returned by every extractor and by the dispatcher.
//
// Compare with errors.Is against the Err* sentinels; use errors.As to reach
// Path and Resource.
type Error struct {
	Kind     Kind
	Path     string // Archive path, when known
	Resource string // Entry name for decode failures
	Err      error
}

var (
	ErrConfiguration     = &Error{Kind: KindConfiguration}
	ErrUnsupportedFormat = &Error{Kind: KindUnsupportedFormat}
	ErrArchive           = &Error{Kind: KindArchive}
	ErrFormat            = &Error{Kind: KindFormat}
	ErrDecode            = &Error{Kind: KindDecode}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Path != "" {
		fmt.Fprintf(&b, ": %s", e.Path)
	}
	if e.Resource != "" {
		fmt.Fprintf(&b, ": %s", e.Resource)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the bare sentinels work as targets
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func configurationError(format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Err: fmt.Errorf(format, args...)}
}

func archiveError(path string, err error) error {
	return &Error{Kind: KindArchive, Path: path, Err: err}
}

func formatError(path string, err error) error {
	return &Error{Kind: KindFormat, Path: path, Err: err}
}

func decodeError(resource string, err error) error {
	return &Error{Kind: KindDecode, Resource: resource, Err: err}
}
