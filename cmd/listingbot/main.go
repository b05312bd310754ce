package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/m3rciful/listingbot/core/buildinfo"
	corecmd "github.com/m3rciful/listingbot/core/cmd"
	"github.com/m3rciful/listingbot/listing/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:     "listingbot",
		Short:   "Telegram listing workflow bot",
		Long:    "listingbot runs a Telegram bot that guides vendors through composing and publishing channel listings.",
		Version: fmt.Sprintf("%s (%s) %s", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		RunE: func(_ *cobra.Command, _ []string) error {
			return corecmd.Run(corecmd.Options{
				ConfigPath:        configPath,
				DefaultConfigPath: "config.yaml",
				Build:             app.Build,
			})
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (overrides CONFIG_PATH)")

	return cmd
}
