package screens

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/services"
)

var userHomeDir = os.UserHomeDir

const (
	pathField = iota
	nameField
)

// ImportScreen attaches archives or directories of archives to a series
type ImportScreen struct {
	controller *services.LibraryController
	inputs     []textinput.Model
	focus      int
	importing  bool
	width      int
	height     int
	err        error
}

func NewImportScreen(controller *services.LibraryController) *ImportScreen {
	path := textinput.New()
	path.Placeholder = "~/comics/akira, ~/comics/akira-extra.cbz"
	path.CharLimit = 1024
	path.Width = 60
	path.Focus()

	name := textinput.New()
	name.Placeholder = "Series name"
	name.CharLimit = 200
	name.Width = 60

	return &ImportScreen{
		controller: controller,
		inputs:     []textinput.Model{path, name},
	}
}

func (s *ImportScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *ImportScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		if s.importing {
			return s, nil
		}

		switch msg.String() {
		case "enter":
			if s.focus == pathField {
				if strings.TrimSpace(s.inputs[nameField].Value()) == "" {
					s.inputs[nameField].SetValue(guessName(s.inputs[pathField].Value()))
				}
				return s, s.setFocus(nameField)
			}
			paths := splitPaths(s.inputs[pathField].Value())
			if len(paths) == 0 {
				s.err = fmt.Errorf("no paths given")
				return s, s.setFocus(pathField)
			}
			s.importing = true
			s.err = nil
			return s, s.addSeries(s.inputs[nameField].Value(), paths)

		case "up", "esc":
			if s.focus == nameField {
				return s, s.setFocus(pathField)
			}

		case "down":
			if s.focus == pathField {
				return s, s.setFocus(nameField)
			}
		}

	case seriesAddedMsg:
		s.importing = false
		if msg.err != nil {
			s.err = msg.err
			return s, nil
		}
		for i := range s.inputs {
			s.inputs[i].Reset()
		}
		id := msg.series.ID
		return s, tea.Batch(s.setFocus(pathField), func() tea.Msg {
			return SwitchScreenMsg{Screen: "details", Data: id}
		})
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

func (s *ImportScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("Import Comics")

	fields := make([]string, len(s.inputs))
	labels := []string{"Archives or directories (comma separated)", "Series"}
	for i, input := range s.inputs {
		style := styles.InputStyle
		if i == s.focus {
			style = styles.FocusedInputStyle
		}
		fields[i] = styles.SubtitleStyle.Render(labels[i]) + "\n" + style.Render(input.View())
	}

	var status string
	switch {
	case s.importing:
		status = styles.StatusLoading.Render("Importing...")
	case s.err != nil:
		status = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
	}

	help := styles.HelpStyle.Render(
		"enter: next field/import • ↑/↓: switch field • tab: switch view • ctrl+c: quit",
	)

	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n%s", header, fields[pathField], fields[nameField], status, help)
}

func (s *ImportScreen) setFocus(field int) tea.Cmd {
	s.inputs[s.focus].Blur()
	s.focus = field
	return s.inputs[field].Focus()
}

// splitPaths splits a comma separated list and expands a leading ~
func splitPaths(value string) []string {
	var paths []string
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, expandHome(p))
	}
	return paths
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := userHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// guessName names a series after the first path given
func guessName(value string) string {
	paths := splitPaths(value)
	if len(paths) == 0 {
		return ""
	}
	base := filepath.Base(filepath.Clean(paths[0]))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Messages
type seriesAddedMsg struct {
	series *data.Series
	err    error
}

// Commands
func (s *ImportScreen) addSeries(name string, paths []string) tea.Cmd {
	return func() tea.Msg {
		series, err := s.controller.AddSeries(name, paths)
		return seriesAddedMsg{series: series, err: err}
	}
}
