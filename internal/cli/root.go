// Package cli implements clusterctl, the admin command line over a
// clusterscope data directory.
package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/clusterscope/internal/app"
	"github.com/dgallion1/clusterscope/internal/config"
)

var (
	verbose bool
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "clusterctl",
	Short: "Manage a clusterscope data directory",
	Long: `clusterctl ingests documents, searches the index and generates reports
against the same data directory the clusterscope server uses.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (overrides DATA_DIR)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// openApp loads the configuration and wires the components. Commands that do
// not read transcripts skip the session database so they can run next to a
// live server.
func openApp(cmd *cobra.Command, withSessions bool) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
		if os.Getenv("SESSION_DIR") == "" {
			cfg.SessionDir = filepath.Join(dataDir, "sessions")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var opts []app.Option
	if !withSessions {
		opts = append(opts, app.WithoutSessions())
	}
	return app.New(context.Background(), cfg, newLogger(cmd), opts...)
}
