package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vocadrill/internal/persist"
	"vocadrill/internal/practice"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a question set and create a session",
	Long:  "Import reads a question-set JSON file, validates it and stores it locally under a fresh session id. The id is printed so it can be passed to `vocadrill practice`.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read question set: %w", err)
		}

		var data practice.SessionData
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parse question set: %w", err)
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		store, err := persist.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		sessionID := uuid.New().String()
		if err := store.SaveSession(cmd.Context(), sessionID, &data); err != nil {
			return err
		}

		fmt.Println(sessionID)
		return nil
	},
}
