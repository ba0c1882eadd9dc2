package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stikie/stikie/internal/config"
	"github.com/stikie/stikie/internal/session"
	"github.com/stikie/stikie/pkg/adapters/postgres"
	"github.com/stikie/stikie/pkg/adapters/statefile"
	"github.com/stikie/stikie/pkg/core"
	"github.com/stikie/stikie/pkg/store"
	stikiesync "github.com/stikie/stikie/pkg/sync"
)

var (
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stikie",
	Short: "An offline-first sticky-notes board with optional cloud sync",
	Long: `Stikie keeps your sticky notes on a local board that always works
offline. With a remote store configured, every change syncs in the
background and failed pushes are queued durably until you are back
online.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}

// app is the wired engine behind every command.
type app struct {
	cfg        *config.Config
	files      *statefile.Store
	board      *store.Store
	session    *session.Manager
	remote     *postgres.Client // nil in local-only mode or when unreachable
	queue      *stikiesync.Queue
	dispatcher *stikiesync.Dispatcher
	reconciler *stikiesync.Reconciler
}

// newApp loads config and wires the engine. When a remote DSN is
// configured but the store is unreachable, pushes still run against an
// always-failing remote, so every mutation lands in the durable queue
// instead of being lost.
func newApp(ctx context.Context) (*app, error) {
	logger := slog.Default()

	cfg, err := config.NewLoader(logger).Load()
	if err != nil {
		return nil, err
	}

	files, err := statefile.New(cfg.StateDir, logger)
	if err != nil {
		return nil, err
	}

	board, err := store.New(files, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load board state: %w", err)
	}

	sess, err := session.NewManager(cfg.StateDir, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, files: files, board: board, session: sess}
	if cfg.Remote.DSN == "" {
		return a, nil
	}

	var remote core.Remote
	client, err := postgres.Open(ctx, postgres.Config{
		DSN:       cfg.Remote.DSN,
		BatchSize: cfg.Remote.BatchSize,
		Logger:    logger,
	})
	if err != nil {
		logger.Warn("remote store unreachable, queueing changes locally", "error", err)
		remote = stikiesync.OfflineRemote{Err: err}
	} else {
		a.remote = client
		remote = client
	}

	a.queue = stikiesync.NewQueue(files, remote, logger)
	a.dispatcher = stikiesync.NewDispatcher(stikiesync.DispatcherConfig{
		Source:   board,
		Remote:   remote,
		Queue:    a.queue,
		Identity: sess,
		Logger:   logger,
		Debounce: cfg.Sync.Debounce.Std(),
	})
	board.SetScheduler(a.dispatcher)
	a.reconciler = stikiesync.NewReconciler(stikiesync.ReconcilerConfig{
		Store:    board,
		Remote:   remote,
		Queue:    a.queue,
		Identity: sess,
		Logger:   logger,
	})
	return a, nil
}

// requireSync errors out for commands that need a configured remote.
func (a *app) requireSync() error {
	if a.queue == nil {
		return fmt.Errorf("no remote store configured (set remote.dsn in stikie.yaml or %s)", config.EnvDSN)
	}
	return nil
}

// Close flushes pending pushes and releases the remote connection.
func (a *app) Close() {
	if a.dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.dispatcher.Flush(ctx); err != nil {
			slog.Default().Warn("failed to flush pending pushes", "error", err)
		}
	}
	if a.remote != nil {
		a.remote.Close()
	}
}
