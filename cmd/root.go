package cmd

import (
	"github.com/spf13/cobra"

	"vocadrill/internal/persist"
)

var rootCmd = &cobra.Command{
	Use:   "vocadrill",
	Short: "Vocabulary practice sessions in the terminal",
	Long:  "Vocadrill runs timed vocabulary review sessions against a learning service: multiple choice, typing, listening and pair matching.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides VOCADRILL_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then VOCADRILL_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, persist.EnsureDir(p)
	}
	return persist.DefaultDBPath()
}
