package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/descant/descant/internal/domain"
)

var songRefresh bool

var songCmd = &cobra.Command{
	Use:   "song <id>",
	Short: "Show a song's details",
	Args:  cobra.ExactArgs(1),
	RunE:  runSong,
}

func init() {
	songCmd.Flags().BoolVar(&songRefresh, "refresh", false, "bypass the cache and refresh from the server")
	rootCmd.AddCommand(songCmd)
}

func runSong(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	song, err := resolve(cmd.Context(), refreshNote, func(deliver domain.DeliverFunc[*domain.Song]) {
		a.catalog.SongDetails(cmd.Context(), args[0], songRefresh, deliver)
	})
	if err != nil {
		if song == nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "refresh failed: %v (showing cached data)\n", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Title:\t%s\n", song.Title)
	fmt.Fprintf(w, "Artist:\t%s\n", song.Artist)
	fmt.Fprintf(w, "Album:\t%s\n", song.Album)
	if song.Genre != "" {
		fmt.Fprintf(w, "Genre:\t%s\n", song.Genre)
	}
	if song.Year != 0 {
		fmt.Fprintf(w, "Year:\t%d\n", song.Year)
	}
	if song.Track != 0 {
		fmt.Fprintf(w, "Track:\t%d\n", song.Track)
	}
	fmt.Fprintf(w, "Length:\t%s\n", song.FormattedDuration())
	if song.BitRate != 0 {
		fmt.Fprintf(w, "Bitrate:\t%d kbps\n", song.BitRate)
	}
	if song.Size != 0 {
		fmt.Fprintf(w, "Size:\t%s\n", humanSize(song.Size))
	}
	fmt.Fprintf(w, "Status:\t%s\n", a.catalog.CachedStatus(song))

	if uri, err := a.catalog.SongURI(cmd.Context(), song.ID); err == nil {
		fmt.Fprintf(w, "URI:\t%s\n", uri)
	}
	return w.Flush()
}
