package screens

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/services"
)

type screenType int

const (
	libraryView screenType = iota
	importView
	detailsView
	readerView
)

// SwitchScreenMsg asks the root screen to change the active view
type SwitchScreenMsg struct {
	Screen string
	Data   interface{}
}

type RootScreen struct {
	ctx        context.Context
	controller *services.LibraryController
	exporter   ChapterExporter
	logger     *slog.Logger

	currentView screenType
	library     *LibraryScreen
	imports     *ImportScreen
	details     *DetailsScreen
	reader      *ReaderScreen

	width  int
	height int
	err    error
}

func NewRootScreen(ctx context.Context, controller *services.LibraryController, exporter ChapterExporter, logger *slog.Logger) *RootScreen {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RootScreen{
		ctx:         ctx,
		controller:  controller,
		exporter:    exporter,
		logger:      logger,
		currentView: libraryView,
		library:     NewLibraryScreen(controller),
		imports:     NewImportScreen(controller),
	}
}

// OpenReader starts on the reader instead of the library
func (r *RootScreen) OpenReader(req ReadRequest) error {
	return r.openReader(req)
}

func (r *RootScreen) openReader(req ReadRequest) error {
	series, err := r.controller.GetSeries(req.SeriesID)
	if err != nil {
		return err
	}
	session, err := r.controller.NewSession(series, nil)
	if err != nil {
		return err
	}
	r.reader = NewReaderScreen(r.ctx, session, r.exporter, r.logger, req.Chapter)
	r.currentView = readerView
	return nil
}

func (r *RootScreen) Init() tea.Cmd {
	if r.currentView == readerView && r.reader != nil {
		return r.reader.Init()
	}
	return r.library.Init()
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return r, r.quit()
		case "q":
			// typed text on the import screen
			if r.currentView != importView {
				return r, r.quit()
			}
		case "tab":
			if r.currentView == detailsView || r.currentView == readerView {
				break
			}
			if r.currentView == libraryView {
				return r, r.switchTo(SwitchScreenMsg{Screen: "import"})
			}
			return r, r.switchTo(SwitchScreenMsg{Screen: "library"})
		}

	case SwitchScreenMsg:
		return r, r.switchTo(msg)
	}

	// Forward message to active screen
	switch r.currentView {
	case libraryView:
		newModel, newCmd := r.library.Update(msg)
		r.library = newModel.(*LibraryScreen)
		return r, newCmd
	case importView:
		newModel, newCmd := r.imports.Update(msg)
		r.imports = newModel.(*ImportScreen)
		return r, newCmd
	case detailsView:
		if r.details != nil {
			newModel, newCmd := r.details.Update(msg)
			r.details = newModel.(*DetailsScreen)
			return r, newCmd
		}
	case readerView:
		if r.reader != nil {
			newModel, newCmd := r.reader.Update(msg)
			r.reader = newModel.(*ReaderScreen)
			return r, newCmd
		}
	}

	return r, cmd
}

func (r *RootScreen) switchTo(msg SwitchScreenMsg) tea.Cmd {
	r.err = nil
	size := r.sizeCmd()

	switch msg.Screen {
	case "library":
		r.currentView = libraryView
		r.reader = nil
		return tea.Batch(r.library.Init(), size)
	case "import":
		r.currentView = importView
		return tea.Batch(r.imports.Init(), size)
	case "details":
		id, ok := msg.Data.(string)
		if !ok {
			return nil
		}
		r.reader = nil
		r.details = NewDetailsScreen(r.controller, id)
		r.currentView = detailsView
		return tea.Batch(r.details.Init(), size)
	case "reader":
		req, ok := msg.Data.(ReadRequest)
		if !ok {
			return nil
		}
		if err := r.openReader(req); err != nil {
			r.err = err
			return nil
		}
		return tea.Batch(r.reader.Init(), size)
	}
	return nil
}

// sizeCmd replays the last window size to a freshly built screen
func (r *RootScreen) sizeCmd() tea.Cmd {
	if r.width == 0 {
		return nil
	}
	size := tea.WindowSizeMsg{Width: r.width, Height: r.height}
	return func() tea.Msg { return size }
}

func (r *RootScreen) quit() tea.Cmd {
	if r.reader != nil {
		if err := r.reader.session.Close(r.ctx); err != nil {
			r.logger.Warn("failed to save progress on quit", "error", err)
		}
	}
	return tea.Quit
}

func (r *RootScreen) View() string {
	var content string
	switch r.currentView {
	case libraryView:
		content = r.library.View()
	case importView:
		content = r.imports.View()
	case detailsView:
		if r.details != nil {
			content = r.details.View()
		}
	case readerView:
		if r.reader != nil {
			return r.reader.View()
		}
	}

	if r.err != nil {
		content = styles.StatusError.Render(fmt.Sprintf("Error: %s", r.err)) + "\n\n" + content
	}

	if tabs := r.renderTabs(); tabs != "" {
		return fmt.Sprintf("%s\n\n%s", tabs, content)
	}
	return content
}

func (r *RootScreen) renderTabs() string {
	if r.currentView == detailsView || r.currentView == readerView {
		return ""
	}

	libraryTab := "Library"
	importTab := "Import"

	if r.currentView == libraryView {
		libraryTab = styles.ActiveTabStyle.Render(libraryTab)
		importTab = styles.InactiveTabStyle.Render(importTab)
	} else {
		libraryTab = styles.InactiveTabStyle.Render(libraryTab)
		importTab = styles.ActiveTabStyle.Render(importTab)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, libraryTab, importTab)
}
