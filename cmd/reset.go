package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vocadrill/internal/persist"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all local session data",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		store, err := persist.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		if err := store.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Local session data cleared.")
		return nil
	},
}
