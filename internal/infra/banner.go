package infra

import (
	"fmt"
	"io"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner writes the startup banner. Secrets are never printed, only
// whether they are configured.
func PrintBanner(w io.Writer, cfg *Config) {
	color := ColorGreen
	auth := "CONFIGURED"
	if !cfg.HasCredentials() {
		color = ColorYellow
		auth = "MISSING (public endpoints only)"
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s###########################################################%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s#                  tradelink gateway link                 #%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s#   VERSION: %-44s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Fprintf(w, "%s#   GATEWAY: %-44s #%s\n", color, cfg.Gateway.URL, ColorReset)
	fmt.Fprintf(w, "%s#   OKX:     %-44s #%s\n", color, cfg.OKX.RestURL, ColorReset)
	fmt.Fprintf(w, "%s#   AUTH:    %-44s #%s\n", color, auth, ColorReset)
	fmt.Fprintf(w, "%s###########################################################%s\n", color, ColorReset)
	fmt.Fprintln(w)
}
