package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/descant/descant/internal/coordinator"
	"github.com/descant/descant/internal/domain"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search songs, albums, artists and playlists",
	Long:  "Search the local cache and the server. Cached matches answer first; server matches replace them when they arrive.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	query := strings.Join(args, " ")
	ctx, ticket := a.coord.Begin(cmd.Context(), "search")

	results, err := resolve(ctx, "searching server...", func(deliver domain.DeliverFunc[*domain.SearchResults]) {
		a.search.Search(ctx, query, coordinator.Guard(ticket, deliver))
	})
	if err != nil {
		if results == nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "server search failed: %v (showing local matches)\n", err)
	}

	if results.Empty() {
		fmt.Println("(no matches)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if len(results.Artists) > 0 {
		fmt.Fprintln(w, "ARTISTS")
		for _, ar := range results.Artists {
			fmt.Fprintf(w, "  %s\t%s\n", ar.ID, ar.Name)
		}
	}
	if len(results.Albums) > 0 {
		fmt.Fprintln(w, "ALBUMS")
		for _, al := range results.Albums {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", al.ID, al.Name, al.Artist)
		}
	}
	if len(results.Songs) > 0 {
		fmt.Fprintln(w, "SONGS")
		for _, s := range results.Songs {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", s.ID, s.Title, s.Artist)
		}
	}
	if len(results.Playlists) > 0 {
		fmt.Fprintln(w, "PLAYLISTS")
		for _, p := range results.Playlists {
			fmt.Fprintf(w, "  %s\t%s\t%d songs\n", p.ID, p.Name, p.SongCount)
		}
	}
	return w.Flush()
}
