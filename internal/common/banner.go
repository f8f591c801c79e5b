package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

var bannerArt = []string{
	` _           _     _ _`,
	`| |__   ___ | | __| (_)_ __   __ _ ___`,
	`| '_ \ / _ \| |/ _' | | '_ \ / _' / __|`,
	`| | | | (_) | | (_| | | | | | (_| \__ \`,
	`|_| |_|\___/|_|\__,_|_|_| |_|\__, |___/`,
	`                             |___/`,
}

type bannerRow struct {
	label string
	value string
}

func storageSummary(config *Config) string {
	if config.Storage.Backend == "memory" {
		return "memory (not persisted)"
	}
	return fmt.Sprintf("%s %s/%s", config.Storage.Address, config.Storage.Namespace, config.Storage.Database)
}

func quoteSummary(config *Config) string {
	if config.Clients.Quote.APIKey == "" {
		return "disabled"
	}
	return config.Clients.Quote.BaseURL
}

func rule(width int) string {
	return banner.ColorCyan + strings.Repeat("═", width) + banner.ColorReset
}

// writeBanner renders the startup banner for config to w.
func writeBanner(w io.Writer, config *Config) {
	text := banner.ColorBold + banner.ColorWhite
	rows := []bannerRow{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Service URL", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)},
		{"Storage", storageSummary(config)},
		{"Quotes", quoteSummary(config)},
		{"Currency", config.DisplayCurrency},
	}

	var b strings.Builder
	b.WriteString("\n" + rule(60) + "\n\n")
	for _, line := range bannerArt {
		b.WriteString(text + line + banner.ColorReset + "\n")
	}
	b.WriteString("\n" + text + "  Bond & Stock Wallet Tracking" + banner.ColorReset + "\n\n")
	b.WriteString(rule(60) + "\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s  %-16s %s%s\n", text, r.label, r.value, banner.ColorReset)
	}
	b.WriteString("\n" + rule(60) + "\n\n")

	io.WriteString(w, b.String())
}

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	writeBanner(os.Stderr, config)

	logger.Info().
		Str("version", GetVersion()).
		Str("commit", GetGitCommit()).
		Str("environment", config.Environment).
		Str("storage", storageSummary(config)).
		Str("quotes", quoteSummary(config)).
		Msg("Application started")
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	text := banner.ColorBold + banner.ColorWhite
	fmt.Fprintf(os.Stderr, "\n%s\n%s  holdings stopped%s\n%s\n\n", rule(42), text, banner.ColorReset, rule(42))
	logger.Info().Msg("Application shutting down")
}
