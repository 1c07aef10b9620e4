package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/counters/internal/board"
	"github.com/h0rv/counters/internal/config"
	"github.com/h0rv/counters/internal/logging"
	"github.com/h0rv/counters/internal/tui"
	"github.com/spf13/cobra"
)

var (
	// CLI flags
	configFlag   string
	apiURLFlag   string
	logLevelFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "counters",
		Short: "Count anything from the terminal",
		Long: `counters keeps a list of named counters on a counters API server.

Run without a subcommand for the interactive board. The last list fetched
from the server is mirrored locally and shown when the server is unreachable.

Configuration:
  1. --config flag or <user config dir>/counters/config.yaml
  2. Environment variables: COUNTERS_API_URL, COUNTERS_DATA_DIR, COUNTERS_LOG_LEVEL
  3. --api-url and --log-level flags`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the config file.")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Counters API base URL. Overrides the config file.")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error).")

	rootCmd.AddCommand(
		listCmd(),
		addCmd(),
		incCmd(),
		decCmd(),
		rmCmd(),
		shareCmd(),
		serveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apiURLFlag != "" {
		cfg.API.URL = apiURLFlag
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI, so logs go to a file
	logger, closer, err := logging.NewFile(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan board.Event, 64)
	emit := func(e board.Event) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}

	a, err := newApp(ctx, cfg, logger, emit)
	if err != nil {
		return err
	}
	defer a.Close()

	model, err := tui.NewAppModel(ctx, tui.Deps{
		Board:      a.board,
		Events:     events,
		AddCounter: a.adder,
		Prefs:      a.prefs,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
