package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kerbaras/comics/pkg/archive"
	"github.com/kerbaras/comics/pkg/data"
	"golang.org/x/sync/semaphore"
)

// Direction tells the cache which end of a chapter to open at
type Direction int

const (
	Forward  Direction = iota // first page
	Backward                  // last page
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// State of the chapter cache
type State int

const (
	StateIdle State = iota
	StateLoading
	StateResident
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateResident:
		return "resident"
	default:
		return "idle"
	}
}

// Outcome reports what Apply or Load did with a result
type Outcome int

const (
	OutcomeStale    Outcome = iota // superseded by a later request, dropped
	OutcomeLoaded                  // pages installed
	OutcomeFailed                  // load failed, cache is idle
	OutcomeResident                // chapter was already in memory
)

// Loader decodes a chapter's pages; *archive.Dispatcher satisfies it
type Loader interface {
	Dispatch(ctx context.Context, file string, chapter *data.Chapter) (*data.Chapter, error)
}

// Recorder persists reading progress
type Recorder interface {
	MarkLastRead(ctx context.Context, chapterID string) error
	SaveProgress(ctx context.Context, chapterID string, page int, read bool) error
}

// Listener is told when a requested chapter lands or fails
type Listener interface {
	PagesLoaded(chapterID string, count int)
	LoadFailed(chapterID string, err error)
}

// LoadTask is one chapter decode handed to the background. Chapter is a
// snapshot, so the task never shares memory with the cache.
type LoadTask struct {
	Index      int
	Direction  Direction
	Generation uint64
	File       string
	Chapter    *data.Chapter
}

// LoadResult carries a finished LoadTask back to the UI loop
type LoadResult struct {
	Task    *LoadTask
	Chapter *data.Chapter
	Err     error
	Elapsed time.Duration
}

type PageCacheOptions struct {
	MaxDecoders int
	LoadTimeout time.Duration
	Logger      *slog.Logger
}

// PageCache keeps at most one chapter of a series decoded in memory.
//
// Request and Apply mutate state and belong to the UI loop; Run is the
// background half and only talks to the Loader. Every request bumps a
// generation counter and results carrying an older generation are discarded.
type PageCache struct {
	mu       sync.Mutex
	chapters []*data.Chapter
	loader   Loader
	recorder Recorder
	listener Listener
	sem      *semaphore.Weighted
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	state      State
	index      int
	generation uint64
}

func NewPageCache(chapters []*data.Chapter, loader Loader, recorder Recorder, listener Listener, opts PageCacheOptions) *PageCache {
	if opts.MaxDecoders < 1 {
		opts.MaxDecoders = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if listener == nil {
		listener = nopListener{}
	}

	return &PageCache{
		chapters: chapters,
		loader:   loader,
		recorder: recorder,
		listener: listener,
		sem:      semaphore.NewWeighted(int64(opts.MaxDecoders)),
		timeout:  opts.LoadTimeout,
		logger:   logger,
		now:      time.Now,
		index:    -1,
	}
}

// Request asks for chapter index. When it is already resident the call is
// served from memory and no task is returned. Otherwise every chapter is
// evicted and the returned task must be passed to Run, then Apply.
func (c *PageCache) Request(index int, direction Direction) (*LoadTask, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.chapters) {
		return nil, fmt.Errorf("chapter index %d out of range [0, %d)", index, len(c.chapters))
	}
	if c.state == StateResident && c.index == index {
		return nil, nil
	}

	for _, ch := range c.chapters {
		ch.Evict()
	}

	c.generation++
	c.state = StateLoading
	c.index = index

	snapshot := *c.chapters[index]
	snapshot.Pages = nil

	c.logger.Debug("chapter requested",
		"chapter", snapshot.ID,
		"index", index,
		"direction", direction.String(),
		"generation", c.generation)

	return &LoadTask{
		Index:      index,
		Direction:  direction,
		Generation: c.generation,
		File:       snapshot.FilePath,
		Chapter:    &snapshot,
	}, nil
}

// Run decodes the task's chapter. It is safe to call from any goroutine and
// never touches cache state.
func (c *PageCache) Run(ctx context.Context, task *LoadTask) LoadResult {
	if task == nil {
		return LoadResult{Err: fmt.Errorf("load task cannot be nil")}
	}

	start := time.Now()
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return LoadResult{Task: task, Err: &archive.Error{Kind: archive.KindArchive, Path: task.File, Err: err}}
	}
	defer c.sem.Release(1)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	loaded, err := c.loader.Dispatch(ctx, task.File, task.Chapter)
	return LoadResult{Task: task, Chapter: loaded, Err: err, Elapsed: time.Since(start)}
}

// Apply installs a finished load. Results from superseded requests are
// dropped and reported as OutcomeStale without error.
func (c *PageCache) Apply(ctx context.Context, result LoadResult) (Outcome, error) {
	c.mu.Lock()

	task := result.Task
	if task == nil || task.Generation != c.generation || c.state != StateLoading {
		c.mu.Unlock()
		if task != nil {
			c.logger.Debug("dropping stale chapter load", "chapter", task.Chapter.ID, "generation", task.Generation)
		}
		return OutcomeStale, nil
	}

	chapter := c.chapters[task.Index]

	if result.Err == nil && result.Chapter == nil {
		result.Err = fmt.Errorf("loader returned no chapter")
	}
	if result.Err != nil {
		chapter.Evict()
		c.state = StateIdle
		c.mu.Unlock()

		c.logger.Error("failed to load chapter", "chapter", chapter.ID, "file", task.File, "error", result.Err)
		c.listener.LoadFailed(chapter.ID, result.Err)
		return OutcomeFailed, result.Err
	}

	pages := result.Chapter.Pages
	if pages == nil {
		pages = []*data.Page{}
	}
	chapter.Pages = pages
	chapter.CurrentPage = 0
	if task.Direction == Backward && len(pages) > 0 {
		chapter.CurrentPage = len(pages) - 1
	}
	readAt := c.now()
	chapter.LastRead = &readAt
	c.state = StateResident
	c.mu.Unlock()

	c.logger.Info("chapter loaded",
		"chapter", chapter.ID,
		"pages", len(pages),
		"elapsed", result.Elapsed)

	if c.recorder != nil {
		if err := c.recorder.MarkLastRead(ctx, chapter.ID); err != nil {
			c.logger.Warn("failed to record last read", "chapter", chapter.ID, "error", err)
		}
	}
	c.listener.PagesLoaded(chapter.ID, len(pages))

	return OutcomeLoaded, nil
}

// Load runs Request, Run and Apply on the calling goroutine
func (c *PageCache) Load(ctx context.Context, index int, direction Direction) (Outcome, error) {
	task, err := c.Request(index, direction)
	if err != nil {
		return OutcomeFailed, err
	}
	if task == nil {
		return OutcomeResident, nil
	}
	return c.Apply(ctx, c.Run(ctx, task))
}

// Close evicts every chapter and invalidates loads still in flight
func (c *PageCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.chapters {
		ch.Evict()
	}
	c.generation++
	c.state = StateIdle
	c.index = -1
}

func (c *PageCache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether a request is waiting for its result
func (c *PageCache) Loading() bool {
	return c.State() == StateLoading
}

// Index is the chapter currently loading or resident, -1 before any request
func (c *PageCache) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *PageCache) Len() int {
	return len(c.chapters)
}

func (c *PageCache) Chapter(index int) *data.Chapter {
	if index < 0 || index >= len(c.chapters) {
		return nil
	}
	return c.chapters[index]
}

// Resident returns the chapter whose pages are in memory
func (c *PageCache) Resident() (*data.Chapter, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateResident {
		return nil, -1, false
	}
	return c.chapters[c.index], c.index, true
}

// withResident runs fn on the resident chapter under the cache lock
func (c *PageCache) withResident(fn func(ch *data.Chapter, index int)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateResident {
		return false
	}
	fn(c.chapters[c.index], c.index)
	return true
}

type nopListener struct{}

func (nopListener) PagesLoaded(string, int)  {}
func (nopListener) LoadFailed(string, error) {}
