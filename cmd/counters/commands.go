package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/h0rv/counters/internal/board"
	"github.com/h0rv/counters/internal/config"
	"github.com/h0rv/counters/internal/domain"
	"github.com/h0rv/counters/internal/logging"
	"github.com/h0rv/counters/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errNoSuchCounter = errors.New("no such counter")

// withApp loads config, logs to stderr and wires the app for one
// subcommand. The board shows the mirror without waiting.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	noDelay := time.Duration(0)
	cfg.Board.FallbackDelay = &noDelay

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// load fetches the list, reporting when the mirror stands in for the server.
func load(ctx context.Context, cmd *cobra.Command, a *app) error {
	err := a.board.Load(ctx)
	if err == nil {
		return nil
	}
	if a.board.State().Status == board.StatusHasContent {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: server unreachable, showing the last known list (%v)\n", err)
		return nil
	}
	return err
}

// resolve finds counters by id, or by title ignoring case.
func resolve(counters []domain.Counter, refs []string) ([]domain.Counter, error) {
	var found []domain.Counter
	for _, ref := range refs {
		c, ok := domain.Find(counters, ref)
		if !ok {
			for _, candidate := range counters {
				if strings.EqualFold(candidate.Title, ref) {
					c, ok = candidate, true
					break
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q", errNoSuchCounter, ref)
		}
		found = append(found, c)
	}
	return found, nil
}

func printBoard(cmd *cobra.Command, vm board.ViewModel) {
	out := cmd.OutOrStdout()
	if !vm.Placeholder.Hidden() {
		fmt.Fprintln(out, vm.Placeholder.Title)
		if vm.Placeholder.Message != "" {
			fmt.Fprintln(out, vm.Placeholder.Message)
		}
		return
	}
	for _, row := range vm.Rows {
		fmt.Fprintf(out, "%5d  %s  %s\n", row.Count, row.Title, row.ID)
	}
	fmt.Fprintln(out, vm.Summary)
}

func listCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := load(ctx, cmd, a); err != nil {
					return err
				}
				if filter != "" {
					a.board.Search(filter)
				}
				printBoard(cmd, a.board.State().ViewModel())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Only show counters whose title contains this text.")
	return cmd
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Create a counter",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				a.adder.SetName(strings.Join(args, " "))
				if !a.adder.CanSave() {
					return errors.New("title must not be empty")
				}
				counters, err := a.adder.Save(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d counters\n", len(counters))
				return nil
			})
		},
	}
}

// stepCmd builds inc and dec, which share resolution and output.
func stepCmd(use, short string, step func(ctx context.Context, a *app, c domain.Counter) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id|title>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.board.Load(ctx); err != nil {
					return err
				}
				targets, err := resolve(a.board.Counters(), args)
				if err != nil {
					return err
				}
				// Each step changes the list, so read the count fresh every time
				for _, target := range targets {
					c, ok := domain.Find(a.board.Counters(), target.ID)
					if !ok {
						return fmt.Errorf("%w: %q", errNoSuchCounter, target.ID)
					}
					if err := step(ctx, a, c); err != nil {
						return err
					}
				}
				printBoard(cmd, a.board.State().ViewModel())
				return nil
			})
		},
	}
}

func incCmd() *cobra.Command {
	return stepCmd("inc", "Increment counters", func(ctx context.Context, a *app, c domain.Counter) error {
		return a.board.Increment(ctx, c)
	})
}

func decCmd() *cobra.Command {
	return stepCmd("dec", "Decrement counters, deleting those already at zero", func(ctx context.Context, a *app, c domain.Counter) error {
		return a.board.Decrement(ctx, c)
	})
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id|title>...",
		Short: "Delete counters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.board.Load(ctx); err != nil {
					return err
				}
				counters, err := resolve(a.board.Counters(), args)
				if err != nil {
					return err
				}
				ids := make([]string, len(counters))
				for i, c := range counters {
					ids[i] = c.ID
				}
				report := a.board.Delete(ctx, ids)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d of %d\n", len(report.Deleted), len(ids))
				return report.Err()
			})
		},
	}
}

func shareCmd() *cobra.Command {
	var copyFlag bool
	cmd := &cobra.Command{
		Use:   "share [id|title]...",
		Short: "Print counters as share text, all of them by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := load(ctx, cmd, a); err != nil {
					return err
				}
				counters := a.board.Counters()
				if len(args) > 0 {
					var err error
					if counters, err = resolve(counters, args); err != nil {
						return err
					}
				}
				ids := make([]string, len(counters))
				for i, c := range counters {
					ids[i] = c.ID
				}

				text := a.board.Share(ids)
				fmt.Fprintln(cmd.OutOrStdout(), text)
				if copyFlag {
					if err := clipboard.WriteAll(text); err != nil {
						return fmt.Errorf("failed to copy to clipboard: %w", err)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "Also copy the text to the clipboard.")
	return cmd
}

func serveCmd() *cobra.Command {
	var seed []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an in-memory counters API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger, seed)
		},
	}
	cmd.Flags().StringSliceVar(&seed, "seed", nil, "Titles of counters to start with.")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger, seed []string) error {
	var initial []domain.Counter
	for i, title := range seed {
		initial = append(initial, domain.Counter{ID: fmt.Sprintf("seed-%d", i+1), Title: title})
	}
	srv := server.New(logger, server.WithCounters(initial))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(cfg.Server.Addr()) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errc
}
