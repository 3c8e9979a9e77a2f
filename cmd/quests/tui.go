package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/quests/internal/logging"
	"github.com/dukerupert/quests/internal/tui"
)

func newTUICmd(load loadFunc) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Manage quests on a running server from the terminal",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := load(c)
			if err != nil {
				return err
			}

			// The terminal is taken over by the UI, so logs go to a file or nowhere.
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			logger := logging.New(w, cfg.LogLevel, cfg.LogFormat)
			slog.SetDefault(logger)

			return tui.Run(c.Context(), cfg.BaseURL, logger)
		},
	}
	cmd.Flags().String("base-url", "http://localhost:3000", "quest server URL")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	return cmd
}
