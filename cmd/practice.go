package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vocadrill/internal/config"
	"vocadrill/internal/persist"
	"vocadrill/internal/practice"
	"vocadrill/internal/remote"
	"vocadrill/internal/tui"
)

var practiceCmd = &cobra.Command{
	Use:   "practice <session-id>",
	Short: "Run a practice session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd, args[0])
	},
}

// runPractice opens the store, wires the engine and launches the TUI.
func runPractice(cmd *cobra.Command, sessionID string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	store, err := persist.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	svc := remote.WithRetry(
		remote.NewClient(cfg.Service.BaseURL,
			remote.WithHTTPClient(&http.Client{Timeout: cfg.Service.Timeout}),
			remote.WithLogger(log),
		),
		remote.DefaultRetryConfig(),
	)

	ctrl := practice.NewController(store, store.Guard(), svc,
		practice.WithLogger(log),
		practice.WithFeedbackCountdown(cfg.Practice.FeedbackSeconds, time.Second),
	)

	return tui.Run(ctrl, sessionID)
}

// newLogger builds the zap logger; logs go to a file so they never
// bleed into the TUI.
func newLogger(env string) (*zap.Logger, error) {
	logPath := os.Getenv("VOCADRILL_LOG")
	if logPath == "" {
		return zap.NewNop(), nil
	}

	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	return cfg.Build()
}
