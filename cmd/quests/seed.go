package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/quests/internal/database"
	"github.com/dukerupert/quests/internal/logging"
	"github.com/dukerupert/quests/internal/seed"
	"github.com/dukerupert/quests/internal/store"
)

func newSeedCmd(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace all quests with the demo data",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := load(c)
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			db, err := database.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			n, err := seed.Run(store.NewQuestStore(db), logger.With("component", "seed"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Seed completed: created %d quests\n", n)
			return nil
		},
	}
	cmd.Flags().String("db-path", "quests.db", "SQLite database file")
	return cmd
}
