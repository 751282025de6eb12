package main

import (
	"fmt"

	"github.com/chromegate/chromegate/internal/chrome"
	"github.com/spf13/cobra"
)

func getChromeCmd(root *rootCommand) *cobra.Command {
	chromeCmd := &cobra.Command{
		Use:   "chrome",
		Short: "Manage the supervised headless browser",
	}
	chromeCmd.AddCommand(getChromeStartCmd(root))
	chromeCmd.AddCommand(getChromeStopCmd(root))
	chromeCmd.AddCommand(getChromeStatusCmd(root))
	return chromeCmd
}

func getChromeStartCmd(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Launch the headless browser with remote debugging enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			sup := chrome.NewSupervisor(root.cfg.ChromeConfig, root.logger)
			return sup.Start(cmd.Context())
		},
	}
}

func getChromeStopCmd(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Terminate the browser serving the configured debugging port",
		RunE: func(cmd *cobra.Command, args []string) error {
			sup := chrome.NewSupervisor(root.cfg.ChromeConfig, root.logger)
			return sup.Stop(cmd.Context())
		},
	}
}

func getChromeStatusCmd(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the debugging endpoint answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			sup := chrome.NewSupervisor(root.cfg.ChromeConfig, root.logger)
			status := sup.Status(cmd.Context())

			out := cmd.OutOrStdout()
			if status.Running {
				fmt.Fprintf(out, "running\t%s\t%s\n", status.Endpoint, status.Browser)
				if status.WebSocketURL != "" {
					fmt.Fprintf(out, "websocket\t%s\n", status.WebSocketURL)
				}
			} else {
				fmt.Fprintf(out, "not running\t%s\n", status.Endpoint)
			}
			for _, pid := range status.PIDs {
				fmt.Fprintf(out, "pid\t%d\n", pid)
			}
			return nil
		},
	}
}
