package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExtractor struct {
	extractFunc func(ctx context.Context, path string) ([]*data.Page, error)
	calls       []string
}

func (m *mockExtractor) Extract(ctx context.Context, path string) ([]*data.Page, error) {
	m.calls = append(m.calls, path)
	if m.extractFunc != nil {
		return m.extractFunc(ctx, path)
	}
	return []*data.Page{}, nil
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		ok     bool
	}{
		{"a/ch1.cbz", FormatZip, true},
		{"a/ch1.ZIP", FormatZip, true},
		{"ch1.cbr", FormatRar, true},
		{"ch1.Rar", FormatRar, true},
		{"ch1.nhlcomic", FormatGifSequence, true},
		{"ch1.CBG", FormatGifSequence, true},
		{"ch1.pdf", "", false},
		{"cbz", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, ok := DetectFormat(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.ok, Supported(tt.path))
		})
	}
}

func TestDispatchRequiresFile(t *testing.T) {
	d := NewDispatcher(DefaultOptions())

	_, err := d.Dispatch(context.Background(), "", &data.Chapter{ID: "c1"})

	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "no file selected")
}

func TestDispatchRequiresChapter(t *testing.T) {
	d := NewDispatcher(DefaultOptions())

	_, err := d.Dispatch(context.Background(), "ch1.cbz", nil)

	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestDispatchUnsupportedSuffix(t *testing.T) {
	mock := &mockExtractor{}
	d := NewDispatcher(DefaultOptions()).WithExtractor(FormatZip, mock)

	_, err := d.Dispatch(context.Background(), "ch1.pdf", &data.Chapter{ID: "c1"})

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Empty(t, mock.calls, "no extractor is invoked")
}

func TestDispatchRoutesBySuffix(t *testing.T) {
	zipX, rarX, gifX := &mockExtractor{}, &mockExtractor{}, &mockExtractor{}
	d := NewDispatcher(DefaultOptions()).
		WithExtractor(FormatZip, zipX).
		WithExtractor(FormatRar, rarX).
		WithExtractor(FormatGifSequence, gifX)

	for _, file := range []string{"a.cbz", "b.ZIP", "c.CBR", "d.rar", "e.nhlcomic", "f.Cbg"} {
		_, err := d.Dispatch(context.Background(), file, &data.Chapter{})
		require.NoError(t, err, file)
	}

	assert.Equal(t, []string{"a.cbz", "b.ZIP"}, zipX.calls)
	assert.Equal(t, []string{"c.CBR", "d.rar"}, rarX.calls)
	assert.Equal(t, []string{"e.nhlcomic", "f.Cbg"}, gifX.calls)
}

func TestDispatchReturnsCopy(t *testing.T) {
	pages := []*data.Page{{Name: "p1.png"}, {Name: "p2.png"}}
	mock := &mockExtractor{extractFunc: func(ctx context.Context, path string) ([]*data.Page, error) {
		return pages, nil
	}}
	d := NewDispatcher(DefaultOptions()).WithExtractor(FormatZip, mock)

	chapter := &data.Chapter{ID: "c1", Title: "Chapter 1", FilePath: "ch1.cbz", CurrentPage: 3}
	loaded, err := d.Dispatch(context.Background(), chapter.FilePath, chapter)
	require.NoError(t, err)

	assert.Nil(t, chapter.Pages, "input is not modified")
	assert.Equal(t, pages, loaded.Pages)
	assert.Equal(t, "c1", loaded.ID)
	assert.Equal(t, "Chapter 1", loaded.Title)
	assert.Equal(t, 3, loaded.CurrentPage)
}

func TestDispatchPropagatesExtractorErrors(t *testing.T) {
	boom := &Error{Kind: KindFormat, Path: "ch1.cbz", Err: errors.New("bad central directory")}
	mock := &mockExtractor{extractFunc: func(ctx context.Context, path string) ([]*data.Page, error) {
		return nil, boom
	}}
	d := NewDispatcher(DefaultOptions()).WithExtractor(FormatZip, mock)

	loaded, err := d.Dispatch(context.Background(), "ch1.cbz", &data.Chapter{})

	assert.Nil(t, loaded)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestWithExtractorLeavesOriginalUntouched(t *testing.T) {
	original := NewDispatcher(DefaultOptions())
	mock := &mockExtractor{}

	_ = original.WithExtractor(FormatZip, mock)

	_, isMock := original.extractors[FormatZip].(*mockExtractor)
	assert.False(t, isMock)
}

func TestDispatchRealZip(t *testing.T) {
	path := writeZip(t, "ch1.CBZ",
		zipEntry{"img2.jpg", jpegOfWidth(t, 2)},
		zipEntry{"img10.jpg", jpegOfWidth(t, 10)},
		zipEntry{"img1.jpg", jpegOfWidth(t, 1)},
	)

	loaded, err := NewDispatcher(DefaultOptions()).Dispatch(context.Background(), path, &data.Chapter{ID: "c1"})
	require.NoError(t, err)

	assert.True(t, loaded.Loaded())
	assert.Equal(t, []int{1, 2, 10}, widths(loaded.Pages))
}
