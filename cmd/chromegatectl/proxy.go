package main

import (
	"fmt"

	"github.com/chromegate/chromegate/internal/proxyconf"
	"github.com/spf13/cobra"
)

func getProxyCmd(root *rootCommand) *cobra.Command {
	proxyCmd := &cobra.Command{
		Use:   "proxy",
		Short: "Manage the nginx site fronting the debugging endpoint",
	}
	proxyCmd.AddCommand(getProxyRenderCmd(root))
	proxyCmd.AddCommand(getProxyDiffCmd(root))
	proxyCmd.AddCommand(getProxyInstallCmd(root))
	return proxyCmd
}

func getProxyRenderCmd(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Print the nginx site for the configured ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := proxyconf.NewManager(root.cfg.ProxyConfig, root.logger)
			site, err := m.Render()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), site)
			return nil
		},
	}
}

func getProxyDiffCmd(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show what installing the site would change",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := proxyconf.NewManager(root.cfg.ProxyConfig, root.logger)
			diff, changed, err := m.Diff()
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), "proxy site up to date")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return nil
		},
	}
}

func getProxyInstallCmd(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Write the site, validate the nginx configuration and reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := proxyconf.NewManager(root.cfg.ProxyConfig, root.logger)
			return m.Install(cmd.Context())
		},
	}
}
