package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/descant/descant/internal/domain"
)

var playlistsRefresh bool

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List playlists",
	Args:  cobra.NoArgs,
	RunE:  runPlaylists,
}

func init() {
	playlistsCmd.Flags().BoolVar(&playlistsRefresh, "refresh", false, "bypass the cache and refresh from the server")
	rootCmd.AddCommand(playlistsCmd)
}

func runPlaylists(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	playlists, err := resolve(cmd.Context(), refreshNote, func(deliver domain.DeliverFunc[[]domain.Playlist]) {
		a.catalog.Playlists(cmd.Context(), playlistsRefresh, deliver)
	})
	if err != nil {
		if playlists == nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "refresh failed: %v (showing cached data)\n", err)
	}

	if len(playlists) == 0 {
		fmt.Println("(no playlists)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSONGS\tLENGTH\tOWNER")
	for _, p := range playlists {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", p.ID, p.Name, p.SongCount, p.FormattedDuration(), p.Owner)
	}
	return w.Flush()
}
