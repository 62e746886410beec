package app

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/comics/pkg/app/screens"
	"github.com/kerbaras/comics/pkg/services"
)

type App struct {
	controller *services.LibraryController
	exporter   screens.ChapterExporter
	logger     *slog.Logger
}

func NewApp(controller *services.LibraryController, exporter screens.ChapterExporter, logger *slog.Logger) *App {
	return &App{controller: controller, exporter: exporter, logger: logger}
}

// Run starts on the library
func (a *App) Run(ctx context.Context) error {
	return a.run(ctx, screens.NewRootScreen(ctx, a.controller, a.exporter, a.logger))
}

// Read starts straight in the reader. A negative chapter resumes where the
// series was left.
func (a *App) Read(ctx context.Context, seriesID string, chapter int) error {
	model := screens.NewRootScreen(ctx, a.controller, a.exporter, a.logger)
	if err := model.OpenReader(screens.ReadRequest{SeriesID: seriesID, Chapter: chapter}); err != nil {
		return err
	}
	return a.run(ctx, model)
}

func (a *App) run(ctx context.Context, model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
