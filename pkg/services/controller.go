package services

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/kerbaras/comics/pkg/archive"
	"github.com/kerbaras/comics/pkg/data"
)

// LibraryRepository is the storage the library controller needs
type LibraryRepository interface {
	Recorder
	SaveSeries(series *data.Series) error
	SaveChapter(chapter *data.Chapter, position int) error
	GetSeries(id string) (*data.Series, error)
	ListSeries() ([]*data.Series, error)
	GetSeriesWithChapterCount(id string) (*data.Series, int, int, error)
	DeleteSeries(id string) error
}

// SeriesSummary is a series with its chapter counts, for listings
type SeriesSummary struct {
	Series   *data.Series
	Chapters int
	Read     int
}

// LibraryController manages the bookshelf and opens reading sessions
type LibraryController struct {
	repo   LibraryRepository
	loader Loader
	opts   PageCacheOptions
	logger *slog.Logger
	newID  func() string
}

func NewLibraryController(repo LibraryRepository, loader Loader, opts PageCacheOptions) *LibraryController {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		opts.Logger = logger
	}
	return &LibraryController{
		repo:   repo,
		loader: loader,
		opts:   opts,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// AddSeries registers one chapter per supported archive found in paths.
// Directories contribute their top-level archives. Chapters are attached in
// natural order of file name; adding to an existing series appends the files
// it does not already have.
func (c *LibraryController) AddSeries(name string, paths []string) (*data.Series, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("series name cannot be empty")
	}

	files, err := collectArchives(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported archives found")
	}

	series, err := c.FindSeriesByName(name)
	if err != nil {
		return nil, err
	}
	if series == nil {
		series = &data.Series{ID: c.newID(), Name: name}
		if err := c.repo.SaveSeries(series); err != nil {
			return nil, fmt.Errorf("failed to save series: %w", err)
		}
	} else if series, err = c.repo.GetSeries(series.ID); err != nil {
		return nil, fmt.Errorf("failed to get series: %w", err)
	}

	known := make(map[string]bool, len(series.Chapters))
	for _, ch := range series.Chapters {
		known[ch.FilePath] = true
	}

	added := 0
	for _, file := range files {
		if known[file] {
			continue
		}
		chapter := &data.Chapter{
			ID:       c.newID(),
			SeriesID: series.ID,
			Title:    chapterTitle(file),
			FilePath: file,
		}
		if err := c.repo.SaveChapter(chapter, len(series.Chapters)); err != nil {
			return nil, fmt.Errorf("failed to save chapter %s: %w", chapter.Title, err)
		}
		series.Chapters = append(series.Chapters, chapter)
		known[file] = true
		added++
	}

	c.logger.Info("series updated", "series", series.Name, "added", added, "chapters", len(series.Chapters))
	return series, nil
}

func (c *LibraryController) ListSeries() ([]*SeriesSummary, error) {
	all, err := c.repo.ListSeries()
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}

	summaries := make([]*SeriesSummary, 0, len(all))
	for _, s := range all {
		_, total, read, err := c.repo.GetSeriesWithChapterCount(s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count chapters: %w", err)
		}
		summaries = append(summaries, &SeriesSummary{Series: s, Chapters: total, Read: read})
	}
	return summaries, nil
}

// GetSeries returns the series with its chapters
func (c *LibraryController) GetSeries(id string) (*data.Series, error) {
	if id == "" {
		return nil, fmt.Errorf("series id cannot be empty")
	}
	series, err := c.repo.GetSeries(id)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, fmt.Errorf("series %s not found", id)
	}
	return series, nil
}

// FindSeriesByName matches case-insensitively; nil when there is no match
func (c *LibraryController) FindSeriesByName(name string) (*data.Series, error) {
	all, err := c.repo.ListSeries()
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	for _, s := range all {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return nil, nil
}

func (c *LibraryController) DeleteSeries(id string) error {
	if err := c.repo.DeleteSeries(id); err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}
	return nil
}

// NewSession builds a page cache over the series' chapters and wraps it in a
// reading session
func (c *LibraryController) NewSession(series *data.Series, listener Listener) (*Session, error) {
	if series == nil {
		return nil, fmt.Errorf("series cannot be nil")
	}
	if series.Chapters == nil {
		full, err := c.GetSeries(series.ID)
		if err != nil {
			return nil, err
		}
		series = full
	}

	cache := NewPageCache(series.Chapters, c.loader, c.repo, listener, c.opts)
	return NewSession(series, cache, c.repo, c.logger)
}

// collectArchives expands paths into absolute archive paths in attach order
func collectArchives(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		if !info.IsDir() {
			if !archive.Supported(p) {
				return nil, fmt.Errorf("%s: %w", p, archive.ErrUnsupportedFormat)
			}
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		for _, e := range entries {
			if !e.IsDir() && archive.Supported(e.Name()) {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}

	for i, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		files[i] = abs
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := filepath.Base(files[i]), filepath.Base(files[j])
		if a != b {
			return archive.LessNatural(a, b)
		}
		return files[i] < files[j]
	})
	return files, nil
}

func chapterTitle(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
