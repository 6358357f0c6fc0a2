package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/descant/descant/internal/domain"
)

var downloadPlaylistID string

var downloadCmd = &cobra.Command{
	Use:   "download [songID...]",
	Short: "Download songs for offline playback",
	Args:  cobra.ArbitraryArgs,
	RunE:  runDownload,
}

var downloadsCmd = &cobra.Command{
	Use:   "downloads",
	Short: "List downloaded songs",
	Args:  cobra.NoArgs,
	RunE:  runDownloads,
}

var pruneCmd = &cobra.Command{
	Use:   "prune <songID...>",
	Short: "Remove downloaded audio files",
	Long:  "Remove downloaded audio files, and cover art nothing else uses, from the local cache. Song metadata stays cached.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrune,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadPlaylistID, "playlist", "", "download every song in a playlist")
	rootCmd.AddCommand(downloadCmd, downloadsCmd, pruneCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ids := args
	if downloadPlaylistID != "" {
		details, err := resolve(cmd.Context(), refreshNote, func(deliver domain.DeliverFunc[*domain.PlaylistDetails]) {
			a.catalog.PlaylistDetails(cmd.Context(), downloadPlaylistID, false, deliver)
		})
		if err != nil {
			if details == nil {
				return fmt.Errorf("failed to resolve playlist %s: %w", downloadPlaylistID, err)
			}
			fmt.Fprintf(os.Stderr, "refresh failed: %v (using cached tracklist)\n", err)
		}
		ids = append(ids, details.SongIDs()...)
	}
	if len(ids) == 0 {
		return errors.New("nothing to download: pass song IDs or --playlist")
	}

	results := a.catalog.CacheSongs(cmd.Context(), ids, func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rdownloading %d/%d", done, total)
	})
	fmt.Fprintln(os.Stderr)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.SongID, r.Err)
		}
	}

	fmt.Printf("✓ Downloaded %d of %d songs\n", len(results)-failed, len(ids))
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(ids))
	}
	return nil
}

func runDownloads(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	songs, err := a.catalog.Downloads()
	if err != nil {
		return err
	}
	if len(songs) == 0 {
		fmt.Println("(no downloads)")
		return nil
	}

	var total int64
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tARTIST\tALBUM\tSIZE")
	for _, s := range songs {
		total += s.Size
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Artist, s.Album, humanSize(s.Size))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d songs, %s\n", len(songs), humanSize(total))
	return nil
}

func runPrune(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	for _, id := range args {
		if err := a.catalog.RemoveDownload(id); err != nil {
			return fmt.Errorf("failed to remove %s: %w", id, err)
		}
		fmt.Printf("✓ Removed %s\n", id)
	}
	return nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
