package services

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/kerbaras/comics/pkg/data"
)

type mockLoader struct {
	mu           sync.Mutex
	dispatchFunc func(ctx context.Context, file string, chapter *data.Chapter) (*data.Chapter, error)
	files        []string
}

func (m *mockLoader) Dispatch(ctx context.Context, file string, chapter *data.Chapter) (*data.Chapter, error) {
	m.mu.Lock()
	m.files = append(m.files, file)
	m.mu.Unlock()
	if m.dispatchFunc != nil {
		return m.dispatchFunc(ctx, file, chapter)
	}
	loaded := *chapter
	loaded.Pages = makePages(3)
	return &loaded, nil
}

func (m *mockLoader) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.files...)
}

// pagesLoader serves a fixed page count per file
func pagesLoader(counts map[string]int) *mockLoader {
	return &mockLoader{dispatchFunc: func(ctx context.Context, file string, chapter *data.Chapter) (*data.Chapter, error) {
		n, ok := counts[file]
		if !ok {
			return nil, fmt.Errorf("unknown file %s", file)
		}
		loaded := *chapter
		loaded.Pages = makePages(n)
		return &loaded, nil
	}}
}

type progress struct {
	chapterID string
	page      int
	read      bool
}

type mockRecorder struct {
	markLastReadFunc func(ctx context.Context, chapterID string) error
	lastRead         []string
	saved            []progress
}

func (m *mockRecorder) MarkLastRead(ctx context.Context, chapterID string) error {
	m.lastRead = append(m.lastRead, chapterID)
	if m.markLastReadFunc != nil {
		return m.markLastReadFunc(ctx, chapterID)
	}
	return nil
}

func (m *mockRecorder) SaveProgress(ctx context.Context, chapterID string, page int, read bool) error {
	m.saved = append(m.saved, progress{chapterID, page, read})
	return nil
}

type mockListener struct {
	loaded []string
	failed []error
}

func (m *mockListener) PagesLoaded(chapterID string, count int) {
	m.loaded = append(m.loaded, fmt.Sprintf("%s:%d", chapterID, count))
}

func (m *mockListener) LoadFailed(chapterID string, err error) {
	m.failed = append(m.failed, err)
}

func makePages(n int) []*data.Page {
	pages := make([]*data.Page, n)
	for i := range pages {
		pages[i] = &data.Page{
			Name:  fmt.Sprintf("p%d.png", i+1),
			Image: image.NewRGBA(image.Rect(0, 0, i+1, 1)),
		}
	}
	return pages
}

func makeChapters(n int) []*data.Chapter {
	chapters := make([]*data.Chapter, n)
	for i := range chapters {
		chapters[i] = &data.Chapter{
			ID:       fmt.Sprintf("c%d", i+1),
			SeriesID: "s1",
			Title:    fmt.Sprintf("Chapter %d", i+1),
			FilePath: fmt.Sprintf("ch%d.cbz", i+1),
		}
	}
	return chapters
}

func residentCount(chapters []*data.Chapter) int {
	n := 0
	for _, ch := range chapters {
		if ch.Loaded() {
			n++
		}
	}
	return n
}

func timeAt(hour int) *time.Time {
	t := time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
	return &t
}
