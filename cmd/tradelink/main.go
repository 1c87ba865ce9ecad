// Command tradelink signs OKX private requests and monitors a local
// trading gateway.
//
// Usage:
//
//	tradelink monitor --wait 5
//	tradelink sign --method POST --path /api/v5/trade/order --body '{"instId":"BTC-USDT"}'
//	tradelink keys ethereum.
//	tradelink status
//	tradelink balance USDT
//
// Configuration is read from TRADELINK_CONFIG, ./configs/config.yaml or the
// OS config directory. Credentials come from TRADELINK_OKX_KEY,
// TRADELINK_OKX_SECRET and TRADELINK_OKX_PASSPHRASE (a .env file is honored).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, set via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "tradelink",
		Short:        "OKX request signer and gateway liveness monitor",
		Version:      fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")

	rootCmd.AddCommand(
		buildMonitorCmd(&configPath),
		buildSignCmd(&configPath),
		buildKeysCmd(&configPath),
		buildStatusCmd(&configPath),
		buildBalanceCmd(&configPath),
	)
	return rootCmd
}
