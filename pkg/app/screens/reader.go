package screens

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/comics/pkg/app/components"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/services"
)

// ChapterExporter writes a loaded chapter somewhere outside the reader
type ChapterExporter interface {
	Export(series *data.Series, chapter *data.Chapter) (string, error)
}

type readerKeyMap struct {
	Next        key.Binding
	Prev        key.Binding
	NextChapter key.Binding
	PrevChapter key.Binding
	Retry       key.Binding
	Export      key.Binding
	Back        key.Binding
}

func newReaderKeyMap() readerKeyMap {
	return readerKeyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "l", " ", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		NextChapter: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next chapter"),
		),
		PrevChapter: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "prev chapter"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export EPUB"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
	}
}

func (k readerKeyMap) help() string {
	bindings := []key.Binding{k.Next, k.Prev, k.NextChapter, k.PrevChapter, k.Retry, k.Export, k.Back}
	var out string
	for i, b := range bindings {
		if i > 0 {
			out += " • "
		}
		out += b.Help().Key + ": " + b.Help().Desc
	}
	return out
}

// ReaderScreen shows one page at a time. Chapter decoding runs in commands
// and results come back as chapterLoadedMsg to be applied on the update loop.
type ReaderScreen struct {
	ctx      context.Context
	session  *services.Session
	exporter ChapterExporter
	logger   *slog.Logger
	start    int

	keys     readerKeyMap
	spinner  spinner.Model
	progress *components.ReadingProgress
	page     *components.PageView

	err    error
	notice string
	width  int
	height int
}

func NewReaderScreen(ctx context.Context, session *services.Session, exporter ChapterExporter, logger *slog.Logger, start int) *ReaderScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusLoading
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &ReaderScreen{
		ctx:      ctx,
		session:  session,
		exporter: exporter,
		logger:   logger,
		start:    start,
		keys:     newReaderKeyMap(),
		spinner:  sp,
		progress: components.NewReadingProgress(80),
		page:     components.NewPageView(78, 20),
	}
}

func (s *ReaderScreen) Init() tea.Cmd {
	task, err := s.session.Open(s.start)
	return s.handle(task, err)
}

func (s *ReaderScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)

	case spinner.TickMsg:
		if !s.session.Cache().Loading() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case chapterLoadedMsg:
		// generations only order loads within one cache
		if msg.cache != s.session.Cache() {
			return s, nil
		}
		outcome, err := s.session.Cache().Apply(s.ctx, msg.result)
		switch outcome {
		case services.OutcomeLoaded:
			s.err = nil
		case services.OutcomeFailed:
			s.err = err
		}

	case chapterExportedMsg:
		if msg.err != nil {
			s.logger.Error("failed to export chapter", "series", s.session.Series().ID, "error", msg.err)
			s.notice = fmt.Sprintf("Export failed: %s", msg.err)
		} else {
			s.notice = fmt.Sprintf("Exported %s", msg.path)
		}

	case tea.KeyMsg:
		s.notice = ""
		switch {
		case key.Matches(msg, s.keys.Next):
			return s, s.handle(s.session.Next(s.ctx))
		case key.Matches(msg, s.keys.Prev):
			return s, s.handle(s.session.Prev())
		case key.Matches(msg, s.keys.NextChapter):
			return s, s.handle(s.jump(1))
		case key.Matches(msg, s.keys.PrevChapter):
			return s, s.handle(s.jump(-1))
		case key.Matches(msg, s.keys.Retry):
			return s, s.handle(s.session.Retry())
		case key.Matches(msg, s.keys.Export):
			return s, s.export()
		case key.Matches(msg, s.keys.Back):
			return s, s.close()
		}
	}

	return s, nil
}

func (s *ReaderScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	series := s.session.Series()
	title := series.Name
	if idx := s.session.Cache().Index(); idx >= 0 {
		title = fmt.Sprintf("%s - %s", series.Name, s.session.Cache().Chapter(idx).Title)
	}
	header := styles.TitleStyle.Render(title)

	page, pos := s.session.Current()

	var body, status string
	switch {
	case s.session.Cache().Loading():
		body = fmt.Sprintf("%s %s", s.spinner.View(), s.session.Info())
		status = styles.StatusLoading.Render(s.session.Info())
	case s.err != nil:
		body = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		status = styles.StatusError.Render("Load failed, press r to retry")
	default:
		var img *image.RGBA
		if page != nil {
			img = page.Image
		}
		body = styles.PageFrameStyle.Render(s.page.Render(img))
		status = styles.StatusStyle(s.status()).Render(s.session.Info())
	}
	if s.notice != "" {
		status = fmt.Sprintf("%s  %s", status, styles.MutedStyle.Render(s.notice))
	}

	help := styles.HelpStyle.Render(s.keys.help())

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, body, status, s.progress.View(pos), help)
}

func (s *ReaderScreen) status() string {
	if ch, ok := s.session.Snapshot(); ok && ch.Read {
		return "read"
	}
	return ""
}

func (s *ReaderScreen) resize(width, height int) {
	s.width = width
	s.height = height
	s.progress.SetWidth(width - 4)
	// header, frame border, status, progress and help
	s.page = components.NewPageView(max(width-2, 1), max(height-10, 1))
}

// handle turns a navigation result into a load command
func (s *ReaderScreen) handle(task *services.LoadTask, err error) tea.Cmd {
	switch {
	case errors.Is(err, services.ErrLoading), errors.Is(err, services.ErrNotLoaded):
		return nil
	case errors.Is(err, services.ErrEndOfSeries):
		s.notice = "End of series"
		return nil
	case err != nil:
		s.err = err
		return nil
	}
	if task == nil {
		return nil
	}
	s.err = nil
	return tea.Batch(s.load(task), s.spinner.Tick)
}

func (s *ReaderScreen) jump(delta int) (*services.LoadTask, error) {
	idx := s.session.Cache().Index() + delta
	if idx < 0 || idx >= s.session.Cache().Len() {
		return nil, nil
	}
	return s.session.Jump(idx)
}

// Messages
type chapterLoadedMsg struct {
	cache  *services.PageCache
	result services.LoadResult
}

type chapterExportedMsg struct {
	path string
	err  error
}

// Commands
func (s *ReaderScreen) load(task *services.LoadTask) tea.Cmd {
	cache := s.session.Cache()
	ctx := s.ctx
	return func() tea.Msg {
		return chapterLoadedMsg{cache: cache, result: cache.Run(ctx, task)}
	}
}

func (s *ReaderScreen) export() tea.Cmd {
	if s.exporter == nil {
		return nil
	}
	chapter, ok := s.session.Snapshot()
	if !ok {
		return nil
	}
	series := s.session.Series()
	s.notice = "Exporting..."
	return func() tea.Msg {
		path, err := s.exporter.Export(series, chapter)
		return chapterExportedMsg{path: path, err: err}
	}
}

func (s *ReaderScreen) close() tea.Cmd {
	if err := s.session.Close(s.ctx); err != nil {
		s.logger.Warn("failed to close reading session", "series", s.session.Series().ID, "error", err)
	}
	seriesID := s.session.Series().ID
	return func() tea.Msg {
		return SwitchScreenMsg{Screen: "details", Data: seriesID}
	}
}
