package main

import (
	"github.com/spf13/cobra"

	"github.com/Mave-full/konspektbot/internal/bootstrap"
)

// newRootCmd builds the CLI. Running without a subcommand starts the
// service.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "konspektbot",
		Short: "Telegram bot that transcribes voice and video messages and summarizes them on demand",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return bootstrap.Run(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "konspektbot.yaml", "path to the configuration file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the bot and process updates until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return bootstrap.Run(configPath)
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Run environment diagnostics and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return bootstrap.RunCheck(configPath)
		},
	}

	root.AddCommand(serve, check)
	return root
}
