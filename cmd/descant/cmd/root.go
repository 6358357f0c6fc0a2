package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "descant",
	Short: "Offline-first Subsonic music library client",
	Long: "Descant keeps a local cache of a Subsonic music library: browse\n" +
		"playlists and songs instantly, refresh from the server in the\n" +
		"background, and download songs for offline listening.",
	Version:      Version,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
