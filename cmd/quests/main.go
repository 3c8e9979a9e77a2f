package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dukerupert/quests/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "quests",
		Short:        "Quests task tracker: web server, seed data and terminal client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the web server
  quests serve --port 3000

  # Load the demo quests
  quests seed

  # Use the terminal client against a running server
  quests tui --base-url http://localhost:3000
`),
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	load := func(c *cobra.Command) (*config.Config, error) {
		cfg, err := config.Load(configPath, c.Flags())
		if err != nil {
			return nil, err
		}
		if cfg.Version == "dev" {
			cfg.Version = version
		}
		return cfg, nil
	}

	cmd.AddCommand(
		newServeCmd(load),
		newSeedCmd(load),
		newTUICmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(c *cobra.Command, args []string) {
				fmt.Fprintln(c.OutOrStdout(), version)
			},
		},
	)
	return cmd
}

type loadFunc func(c *cobra.Command) (*config.Config, error)
