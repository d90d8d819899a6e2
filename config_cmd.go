package main

import (
	"github.com/spf13/cobra"

	"github.com/stolujeme/stolu-cli/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	switch cc.Cfg.UI.Output {
	case outputJSON, outputYAML:
		return printResult(cc.Stdout, cc.Cfg.UI.Output, &cc.Cfg.Config)
	default:
		return config.RenderEffective(cc.Cfg, cc.Stdout)
	}
}
