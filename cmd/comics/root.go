package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kerbaras/comics/pkg/app"
	"github.com/kerbaras/comics/pkg/archive"
	"github.com/kerbaras/comics/pkg/config"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/integrations"
	"github.com/kerbaras/comics/pkg/services"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	v       = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "comics",
	Short: "A terminal comic book reader",
	Long:  "Read CBZ, CBR and GIF sequence comics from your terminal and keep track of where you left off",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openLibrary(true)
		if err != nil {
			return err
		}
		defer env.Close()

		return app.NewApp(env.controller, env.exporter(), env.logger).Run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.comics/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "library database path")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().Int("decoders", 0, "chapters decoded at once")

	bindFlag("database.path", "db")
	bindFlag("log.level", "log-level")
	bindFlag("reader.max_decoders", "decoders")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(epubCmd)
}

func bindFlag(key, flag string) {
	cobra.CheckErr(v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// environment is everything a command needs to work on the library
type environment struct {
	cfg        *config.Config
	logger     *slog.Logger
	repo       *data.Repository
	dispatcher *archive.Dispatcher
	controller *services.LibraryController
	logFile    io.Closer
}

func loadConfig() (*config.Config, error) {
	if err := config.ReadFile(v, cfgFile); err != nil {
		return nil, err
	}
	return config.FromViper(v)
}

// openLibrary loads the config and opens the database. The TUI logs to the
// configured file since stderr belongs to the terminal UI.
func openLibrary(tui bool) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	env := &environment{cfg: cfg}
	var out io.Writer = os.Stderr
	if tui {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		env.logFile = f
		out = f
	}
	env.logger = cfg.Logger(out)

	repo, err := data.OpenRepository(cfg.Database.Path)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.repo = repo
	env.dispatcher = archive.NewDispatcher(cfg.ArchiveOptions())
	env.controller = services.NewLibraryController(repo, env.dispatcher, services.PageCacheOptions{
		MaxDecoders: cfg.Reader.MaxDecoders,
		LoadTimeout: cfg.Reader.LoadTimeout,
		Logger:      env.logger,
	})

	env.logger.Debug("library opened", "database", cfg.Database.Path, "decoders", cfg.Reader.MaxDecoders)
	return env, nil
}

func (e *environment) exporter() *integrations.EPubExporter {
	return integrations.NewEPubExporter(e.cfg.Export.Dir, integrations.ExportOptions{
		MaxWidth:  e.cfg.Export.MaxWidth,
		MaxHeight: e.cfg.Export.MaxHeight,
	})
}

func (e *environment) Close() {
	if e.repo != nil {
		e.repo.Close()
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}

// findSeries looks a series up by name and loads its chapters
func (e *environment) findSeries(name string) (*data.Series, error) {
	series, err := e.controller.FindSeriesByName(name)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, fmt.Errorf("series %q not found in library", name)
	}
	return e.controller.GetSeries(series.ID)
}
