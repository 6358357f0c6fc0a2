package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/descant/descant/internal/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status [songID]",
	Short: "Show cache status",
	Long:  "Show the overall cache status, or one song's cached state when an ID is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) == 1 {
		return songStatus(cmd.Context(), a, args[0])
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Server:\t%s\n", a.cfg.Server.URL)
	fmt.Fprintf(w, "User:\t%s\n", a.cfg.Server.Username)
	if a.store == nil {
		fmt.Fprintf(w, "Cache:\tdisabled\n")
		return w.Flush()
	}
	fmt.Fprintf(w, "Cache:\t%s\n", a.cfg.Cache.Dir)
	fmt.Fprintf(w, "Songs known:\t%d\n", len(a.store.AllSongs()))
	fmt.Fprintf(w, "Playlists known:\t%d\n", len(a.store.AllPlaylists()))

	downloads, err := a.catalog.Downloads()
	if err != nil {
		return err
	}
	var total int64
	for _, s := range downloads {
		total += s.Size
	}
	fmt.Fprintf(w, "Downloaded:\t%d songs (%s)\n", len(downloads), humanSize(total))
	return w.Flush()
}

func songStatus(ctx context.Context, a *app, songID string) error {
	song, err := resolve(ctx, refreshNote, func(deliver domain.DeliverFunc[*domain.Song]) {
		a.catalog.SongDetails(ctx, songID, false, deliver)
	})
	if err != nil {
		if song == nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "refresh failed: %v (showing cached data)\n", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Title:\t%s\n", song.Title)
	fmt.Fprintf(w, "Status:\t%s\n", a.catalog.CachedStatus(song))
	if uri, err := a.catalog.SongURI(ctx, song.ID); err == nil {
		fmt.Fprintf(w, "URI:\t%s\n", uri)
	}
	return w.Flush()
}
