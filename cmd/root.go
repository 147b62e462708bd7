package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/billr/internal/billing"
	"github.com/sadopc/billr/internal/config"
	"github.com/sadopc/billr/internal/export"
	"github.com/sadopc/billr/internal/logger"
	"github.com/sadopc/billr/internal/store"
	"github.com/sadopc/billr/internal/tui"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// env is what every command gets after setup: configuration, the open
// store and the log file to close on exit.
var env struct {
	cfg       *config.Config
	store     *store.Store
	logCloser io.Closer
}

var rootCmd = &cobra.Command{
	Use:   "billr",
	Short: "Draft, save and export invoices and quotations",
	Long: `billr keeps invoices and quotations in a local SQLite database.

Run without a subcommand to open the terminal UI: draft a document, edit
its rows, save it and export it to a one-page PDF. The subcommands give
scripted access to the revenue report and saved documents.

Configuration is read from the environment and an optional .env file:
  BILLR_DB_PATH        - Database file (default ~/.config/billr/billr.db)
  BILLR_EXPORT_DIR     - Where PDFs and reports are written (default $HOME)
  BILLR_EXPORT_TIMEOUT - PDF render timeout (default 30s)
  CHROME_REMOTE_URL    - DevTools URL of a running Chrome (optional)
  CHROME_NO_SANDBOX    - Launch Chrome with --no-sandbox
  LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runTUI,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		l := logger.WithComponent("cmd")
		l.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database file (overrides BILLR_DB_PATH)")

	// Finalizers run even when a command fails, unlike post-run hooks.
	cobra.OnFinalize(teardown)
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}

	// The TUI owns the terminal, so only the root command logs to a file.
	closer, err := logger.Setup(cfg.GetLoggerConfig(!cmd.HasParent()))
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		closer.Close()
		return fmt.Errorf("open database: %w", err)
	}

	env.cfg = cfg
	env.store = s
	env.logCloser = closer

	l := logger.WithComponent("cmd")
	l.Debug().Str("command", cmd.Name()).Str("db", cfg.DBPath).Msg("starting")
	return nil
}

// teardown closes what setup opened. It is safe to call more than once.
func teardown() {
	if env.store != nil {
		env.store.Close()
		env.store = nil
	}
	if env.logCloser != nil {
		env.logCloser.Close()
		env.logCloser = nil
	}
	env.cfg = nil
}

func newExporter(cfg *config.Config) (*export.DocumentExporter, *export.ChromePrinter, error) {
	templates, err := export.DefaultTemplates()
	if err != nil {
		return nil, nil, err
	}
	printer := export.NewChromePrinter(export.ChromeConfig{
		RemoteURL: cfg.ChromeRemoteURL,
		NoSandbox: cfg.ChromeNoSandbox,
		Timeout:   cfg.ExportTimeout,
	})
	return export.NewDocumentExporter(templates, printer), printer, nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	exporter, printer, err := newExporter(env.cfg)
	if err != nil {
		return err
	}
	defer printer.Close()

	app := tui.NewApp(tui.Deps{
		KV:        env.store,
		Docs:      billing.NewDocumentStore(env.store),
		IDs:       billing.NewAllocator(env.store),
		Refs:      billing.RandomReferences{},
		Exporter:  exporter,
		ExportDir: env.cfg.ExportDir,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
