package main

import (
	"github.com/spf13/cobra"
)

func buildMonitorCmd(configPath *string) *cobra.Command {
	var opts monitorOptions

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the gateway until interrupted",
		Long: `Probe the gateway on every poll interval, rebuild the connector list and
configuration key cache when it comes up, and report chain connectivity.

Metrics are served on /metrics when an address is configured. With OKX
credentials and a private WebSocket URL, the private channel is kept logged in
for the lifetime of the command.`,
		Example: `  tradelink monitor
  tradelink monitor --wait 10 --metrics-addr :9108`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, *configPath, opts)
		},
	}
	cmd.Flags().IntVar(&opts.waitAttempts, "wait", 0, "Block until the gateway answers, up to this many poll intervals")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Override metrics listen address")
	cmd.Flags().BoolVar(&opts.noPrivateWS, "no-private-ws", false, "Do not open the OKX private channel")
	return cmd
}

func buildSignCmd(configPath *string) *cobra.Command {
	var opts signOptions

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the OK-ACCESS headers for a request",
		Example: `  tradelink sign --path /api/v5/account/balance?ccy=USDT
  tradelink sign --method POST --path /api/v5/trade/order --body '{"instId":"BTC-USDT"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, *configPath, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringVarP(&opts.path, "path", "p", "", "Request path or full URL")
	cmd.Flags().StringVarP(&opts.body, "body", "d", "", "Request body")
	cmd.Flags().BoolVar(&opts.ws, "ws", false, "Print a WebSocket login frame instead")
	return cmd
}

func buildKeysCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [prefix]",
		Short: "List cached gateway configuration keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return runKeys(cmd, *configPath, prefix)
		},
	}
}

func buildStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last gateway state recorded by monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, *configPath)
		},
	}
}

func buildBalanceCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <ccy>",
		Short: "Fetch the available OKX trading balance of a currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(cmd, *configPath, args[0])
		},
	}
}
