package screens

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/comics/pkg/app/components"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/services"
)

type LibraryScreen struct {
	controller *services.LibraryController
	seriesList *components.SeriesList
	width      int
	height     int
	err        error
}

func NewLibraryScreen(controller *services.LibraryController) *LibraryScreen {
	return &LibraryScreen{
		controller: controller,
		seriesList: components.NewSeriesList(),
	}
}

func (s *LibraryScreen) Init() tea.Cmd {
	return s.loadLibrary
}

func (s *LibraryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.seriesList.Width = msg.Width - 4
		s.seriesList.Height = msg.Height - 10

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.seriesList.Prev()
		case "down", "j":
			s.seriesList.Next()
		case "r":
			return s, s.loadLibrary
		case "d":
			if selected := s.seriesList.Selected(); selected != nil {
				return s, s.deleteSeries(selected.Series.ID)
			}
		case "enter":
			if selected := s.seriesList.Selected(); selected != nil {
				id := selected.Series.ID
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: "details", Data: id}
				}
			}
		case "c":
			// Continue where the reader left off
			if selected := s.seriesList.Selected(); selected != nil {
				id := selected.Series.ID
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: "reader", Data: ReadRequest{SeriesID: id, Chapter: -1}}
				}
			}
		}

	case libraryLoadedMsg:
		s.seriesList.SetItems(msg.items)
		s.err = msg.err

	case seriesDeletedMsg:
		if msg.err != nil {
			s.err = msg.err
		}
		return s, s.loadLibrary
	}

	return s, nil
}

func (s *LibraryScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("Comic Library")

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	help := styles.HelpStyle.Render(
		"↑/k: up • ↓/j: down • enter: chapters • c: continue reading • d: delete • r: refresh • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s", header, errorMsg, s.seriesList.View(), help)
}

// Messages
type libraryLoadedMsg struct {
	items []*services.SeriesSummary
	err   error
}

type seriesDeletedMsg struct {
	err error
}

// Commands
func (s *LibraryScreen) loadLibrary() tea.Msg {
	items, err := s.controller.ListSeries()
	return libraryLoadedMsg{items: items, err: err}
}

func (s *LibraryScreen) deleteSeries(id string) tea.Cmd {
	return func() tea.Msg {
		return seriesDeletedMsg{err: s.controller.DeleteSeries(id)}
	}
}
