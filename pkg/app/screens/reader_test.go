package screens

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/comics/pkg/archive"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu       sync.Mutex
	pages    map[string]int
	failures map[string]int // remaining failures per file
}

func (l *fakeLoader) Dispatch(ctx context.Context, file string, chapter *data.Chapter) (*data.Chapter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failures[file] > 0 {
		l.failures[file]--
		return nil, &archive.Error{Kind: archive.KindFormat, Path: file, Err: errors.New("bad header")}
	}

	out := *chapter
	out.Pages = make([]*data.Page, l.pages[file])
	for i := range out.Pages {
		out.Pages[i] = &data.Page{Name: fmt.Sprintf("p%d.png", i+1), Image: image.NewRGBA(image.Rect(0, 0, 4, 6))}
	}
	return &out, nil
}

type fakeExporter struct {
	exported []*data.Chapter
}

func (x *fakeExporter) Export(series *data.Series, chapter *data.Chapter) (string, error) {
	x.exported = append(x.exported, chapter)
	return "/tmp/" + series.Name + ".epub", nil
}

func newTestReader(t *testing.T, loader *fakeLoader, counts ...int) (*ReaderScreen, []*data.Chapter) {
	t.Helper()

	chapters := make([]*data.Chapter, len(counts))
	for i, n := range counts {
		file := fmt.Sprintf("ch%d.cbz", i+1)
		chapters[i] = &data.Chapter{ID: fmt.Sprintf("c%d", i+1), Title: fmt.Sprintf("Chapter %d", i+1), FilePath: file}
		if loader.pages == nil {
			loader.pages = map[string]int{}
		}
		loader.pages[file] = n
	}
	series := &data.Series{ID: "s1", Name: "Akira", Chapters: chapters}

	cache := services.NewPageCache(chapters, loader, nil, nil, services.PageCacheOptions{})
	session, err := services.NewSession(series, cache, nil, nil)
	require.NoError(t, err)

	r := NewReaderScreen(context.Background(), session, &fakeExporter{}, nil, 0)
	r.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return r, chapters
}

// drain runs cmd and every command it batches, returning the messages
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, drain(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// settle feeds chapter loads produced by cmd back into the reader
func settle(r *ReaderScreen, cmd tea.Cmd) {
	for _, msg := range drain(cmd) {
		if loaded, ok := msg.(chapterLoadedMsg); ok {
			r.Update(loaded)
		}
	}
}

func press(r *ReaderScreen, k tea.KeyMsg) tea.Cmd {
	_, cmd := r.Update(k)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReaderOpensFirstChapter(t *testing.T) {
	r, _ := newTestReader(t, &fakeLoader{}, 2, 1)

	cmd := r.Init()
	assert.Contains(t, r.View(), "Loading...")

	settle(r, cmd)

	assert.Contains(t, r.View(), "Chapter 1 / 2 - Page 1 / 2")
	assert.Contains(t, r.View(), "Akira - Chapter 1")
}

func TestReaderPagesIntoNextChapter(t *testing.T) {
	r, chapters := newTestReader(t, &fakeLoader{}, 2, 1)
	settle(r, r.Init())

	assert.Nil(t, press(r, tea.KeyMsg{Type: tea.KeyRight}), "paging inside a chapter needs no load")
	assert.Contains(t, r.View(), "Page 2 / 2")

	cmd := press(r, tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)
	assert.True(t, chapters[0].Read)
	assert.False(t, chapters[0].Loaded())

	settle(r, cmd)
	assert.Contains(t, r.View(), "Chapter 2 / 2 - Page 1 / 1")

	assert.Nil(t, press(r, tea.KeyMsg{Type: tea.KeyRight}))
	assert.Contains(t, r.View(), "End of series")
}

func TestReaderIgnoresNavigationWhileLoading(t *testing.T) {
	r, _ := newTestReader(t, &fakeLoader{}, 2)
	cmd := r.Init()

	assert.Nil(t, press(r, tea.KeyMsg{Type: tea.KeyRight}))
	assert.Nil(t, press(r, tea.KeyMsg{Type: tea.KeyLeft}))
	assert.Nil(t, press(r, runes("n")))

	settle(r, cmd)
	assert.Contains(t, r.View(), "Page 1 / 2")
}

func TestReaderRetriesFailedChapter(t *testing.T) {
	loader := &fakeLoader{failures: map[string]int{"ch1.cbz": 1}}
	r, _ := newTestReader(t, loader, 3)

	settle(r, r.Init())
	view := r.View()
	assert.Contains(t, view, "Error:")
	assert.Contains(t, view, "press r to retry")
	assert.NotContains(t, view, "Loading...")

	settle(r, press(r, runes("r")))
	assert.Contains(t, r.View(), "Chapter 1 / 1 - Page 1 / 3")
	assert.NotContains(t, r.View(), "Error:")
}

func TestReaderDropsLoadFinishingAfterClose(t *testing.T) {
	r, chapters := newTestReader(t, &fakeLoader{}, 1, 1)
	settle(r, r.Init())

	pending := press(r, runes("n"))
	require.NotNil(t, pending)
	drain(press(r, tea.KeyMsg{Type: tea.KeyEsc}))

	settle(r, pending)

	assert.False(t, chapters[1].Loaded(), "result for a closed session must not be installed")
	assert.Equal(t, services.StateIdle, r.session.Cache().State())
}

func TestReaderExportsResidentChapter(t *testing.T) {
	r, _ := newTestReader(t, &fakeLoader{}, 2)
	exporter := r.exporter.(*fakeExporter)

	assert.Nil(t, press(r, runes("e")), "nothing to export before a chapter is resident")

	settle(r, r.Init())
	cmd := press(r, runes("e"))
	require.NotNil(t, cmd)

	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	r.Update(msgs[0])

	require.Len(t, exporter.exported, 1)
	assert.Len(t, exporter.exported[0].Pages, 2)
	assert.Contains(t, r.View(), "Exported /tmp/Akira.epub")
}

func TestReaderBackClosesSession(t *testing.T) {
	r, chapters := newTestReader(t, &fakeLoader{}, 2)
	settle(r, r.Init())

	msgs := drain(press(r, tea.KeyMsg{Type: tea.KeyEsc}))

	require.Len(t, msgs, 1)
	assert.Equal(t, SwitchScreenMsg{Screen: "details", Data: "s1"}, msgs[0])
	assert.False(t, chapters[0].Loaded())
	assert.Equal(t, services.StateIdle, r.session.Cache().State())
}

func TestReaderIgnoresLoadsFromAnotherSession(t *testing.T) {
	old, _ := newTestReader(t, &fakeLoader{}, 1)
	pending := old.Init()

	r, chapters := newTestReader(t, &fakeLoader{}, 1)
	r.Init()

	for _, msg := range drain(pending) {
		if loaded, ok := msg.(chapterLoadedMsg); ok {
			r.Update(loaded)
		}
	}

	assert.False(t, chapters[0].Loaded())
	assert.True(t, r.session.Cache().Loading())
}
