package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/tinsel/internal/app"
	"github.com/five82/tinsel/internal/logging"
)

var (
	configPath string
	prefsPath  string
	dbPath     string

	// Set by PersistentPreRunE for headless commands.
	logger *zap.Logger
)

func options() app.Options {
	return app.Options{ConfigPath: configPath, PrefsPath: prefsPath, DBPath: dbPath}
}

var rootCmd = &cobra.Command{
	Use:   "tinsel",
	Short: "A Christmas countdown whose scene grows every few hours",
	Long: `tinsel counts down to Christmas morning while a festive scene fills up
with a new element every six hours. Elements are generated images when an
image service key is configured, and emoji placeholders otherwise.

Run without arguments to open the terminal scene.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The TUI logs to a file instead
		if cmd == cmd.Root() {
			return nil
		}
		cfg, err := app.LoadConfig(options())
		if err != nil {
			return err
		}
		logger, err = logging.NewStderr(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd.Context(), options())
	},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/tinsel/config.toml)")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "prefs file (default ~/.config/tinsel/prefs.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "scene database (default ~/.local/share/tinsel/scene.db)")

	rootCmd.AddCommand(serveCmd(), statusCmd(), addCmd(), resetCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tinsel: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
