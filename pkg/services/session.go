package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kerbaras/comics/pkg/data"
)

var (
	ErrLoading     = errors.New("chapter is still loading")
	ErrEndOfSeries = errors.New("end of series")
	ErrNotLoaded   = errors.New("no chapter loaded")
)

// Position locates the current page, 1-based for display
type Position struct {
	Chapter  int
	Chapters int
	Page     int
	Pages    int
}

// Session is one reader walking through a series page by page.
// Methods returning a *LoadTask leave it to the caller to Run it in the
// background and hand the result to Apply.
type Session struct {
	series    *data.Series
	cache     *PageCache
	recorder  Recorder
	logger    *slog.Logger
	direction Direction
}

func NewSession(series *data.Series, cache *PageCache, recorder Recorder, logger *slog.Logger) (*Session, error) {
	if series == nil {
		return nil, fmt.Errorf("series cannot be nil")
	}
	if cache.Len() == 0 {
		return nil, fmt.Errorf("series %q has no chapters", series.Name)
	}
	if logger == nil {
		logger = cache.logger
	}
	return &Session{series: series, cache: cache, recorder: recorder, logger: logger}, nil
}

func (s *Session) Series() *data.Series {
	return s.series
}

func (s *Session) Cache() *PageCache {
	return s.cache
}

// Open requests the chapter at start. A negative start resumes at the chapter
// read most recently, or the first chapter of an unread series.
func (s *Session) Open(start int) (*LoadTask, error) {
	if start < 0 {
		start = s.resumeIndex()
	}
	s.direction = Forward
	return s.cache.Request(start, Forward)
}

func (s *Session) resumeIndex() int {
	resume := 0
	var latest *data.Chapter
	for i := 0; i < s.cache.Len(); i++ {
		ch := s.cache.Chapter(i)
		if ch.LastRead == nil {
			continue
		}
		if latest == nil || ch.LastRead.After(*latest.LastRead) {
			latest = ch
			resume = i
		}
	}
	return resume
}

// Next turns one page forward, requesting the following chapter past the last
// page. The chapter being left is marked read.
func (s *Session) Next(ctx context.Context) (*LoadTask, error) {
	if s.cache.Loading() {
		return nil, ErrLoading
	}

	var (
		moved    bool
		leaving  *data.Chapter
		index    int
		lastPage int
	)
	ok := s.cache.withResident(func(ch *data.Chapter, i int) {
		index = i
		if ch.CurrentPage+1 < len(ch.Pages) {
			ch.CurrentPage++
			moved = true
			return
		}
		ch.Read = true
		leaving = ch
		lastPage = ch.CurrentPage
	})
	if !ok {
		return nil, ErrNotLoaded
	}
	if moved {
		return nil, nil
	}

	s.saveProgress(ctx, leaving.ID, lastPage, true)

	if index+1 >= s.cache.Len() {
		return nil, ErrEndOfSeries
	}
	s.direction = Forward
	return s.cache.Request(index+1, Forward)
}

// Prev turns one page back, requesting the previous chapter opened at its
// last page. On the very first page it does nothing.
func (s *Session) Prev() (*LoadTask, error) {
	if s.cache.Loading() {
		return nil, ErrLoading
	}

	var moved bool
	var index int
	ok := s.cache.withResident(func(ch *data.Chapter, i int) {
		index = i
		if ch.CurrentPage > 0 {
			ch.CurrentPage--
			moved = true
		}
	})
	if !ok {
		return nil, ErrNotLoaded
	}
	if moved || index == 0 {
		return nil, nil
	}
	s.direction = Backward
	return s.cache.Request(index-1, Backward)
}

// Jump requests chapter index opened at its first page
func (s *Session) Jump(index int) (*LoadTask, error) {
	if s.cache.Loading() {
		return nil, ErrLoading
	}
	s.direction = Forward
	return s.cache.Request(index, Forward)
}

// Retry requests the last chapter again after a failed load
func (s *Session) Retry() (*LoadTask, error) {
	if s.cache.State() != StateIdle || s.cache.Index() < 0 {
		return nil, nil
	}
	return s.cache.Request(s.cache.Index(), s.direction)
}

// Current returns the page on screen. The page is nil while loading or when
// the resident chapter has no pages.
func (s *Session) Current() (*data.Page, Position) {
	var page *data.Page
	pos := Position{Chapters: s.cache.Len()}

	if idx := s.cache.Index(); idx >= 0 {
		pos.Chapter = idx + 1
	}
	s.cache.withResident(func(ch *data.Chapter, i int) {
		pos.Pages = len(ch.Pages)
		if len(ch.Pages) == 0 {
			return
		}
		pos.Page = ch.CurrentPage + 1
		page = ch.Pages[ch.CurrentPage]
	})
	return page, pos
}

// Snapshot copies the resident chapter so it can be read off the UI loop.
// Pages are immutable and shared with the copy.
func (s *Session) Snapshot() (*data.Chapter, bool) {
	var cp data.Chapter
	ok := s.cache.withResident(func(ch *data.Chapter, _ int) {
		cp = *ch
	})
	if !ok {
		return nil, false
	}
	return &cp, true
}

// Info is the status line shown under the page
func (s *Session) Info() string {
	switch s.cache.State() {
	case StateLoading:
		return "Loading..."
	case StateIdle:
		return "No chapter loaded"
	}
	_, pos := s.Current()
	return fmt.Sprintf("Chapter %d / %d - Page %d / %d", pos.Chapter, pos.Chapters, pos.Page, pos.Pages)
}

// Close saves the reader's place and drops all pages
func (s *Session) Close(ctx context.Context) error {
	var (
		id   string
		page int
		read bool
	)
	resident := s.cache.withResident(func(ch *data.Chapter, _ int) {
		id, page, read = ch.ID, ch.CurrentPage, ch.Read
	})
	s.cache.Close()

	if !resident || s.recorder == nil {
		return nil
	}
	if err := s.recorder.SaveProgress(ctx, id, page, read); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (s *Session) saveProgress(ctx context.Context, chapterID string, page int, read bool) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.SaveProgress(ctx, chapterID, page, read); err != nil {
		s.logger.Warn("failed to save progress", "chapter", chapterID, "error", err)
	}
}
