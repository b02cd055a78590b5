package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"

	"github.com/alanyoungcy/polyview/internal/config"
)

// printBanner writes the server startup banner.
func printBanner(w io.Writer, cfg *config.Config, deps *Dependencies) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 56) + banner.ColorReset

	limiter := "off"
	if deps.RateLimiter != nil {
		limiter = fmt.Sprintf("%s, %d per %s", cfg.Server.RateLimit.Backend,
			cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window.Duration)
	}

	fmt.Fprintf(w, "\n%s\n", hr)
	fmt.Fprintf(w, "%s  POLYVIEW  Polymarket wallet viewer%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n", hr)
	for _, kv := range [][2]string{
		{"API", fmt.Sprintf("http://localhost:%d/api", cfg.Server.Port)},
		{"WebSocket", fmt.Sprintf("ws://localhost:%d/ws", cfg.Server.Port)},
		{"Data API", cfg.DataAPI.Host},
		{"Time zone", deps.Location.String()},
		{"Rate limit", limiter},
	} {
		fmt.Fprintf(w, "%s  %-12s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "%s\n\n", hr)
}
