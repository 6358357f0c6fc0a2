package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/descant/descant/internal/domain"
)

var genresRefresh bool

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List genres",
	Args:  cobra.NoArgs,
	RunE:  runGenres,
}

func init() {
	genresCmd.Flags().BoolVar(&genresRefresh, "refresh", false, "bypass the cache and refresh from the server")
	rootCmd.AddCommand(genresCmd)
}

func runGenres(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	genres, err := resolve(cmd.Context(), refreshNote, func(deliver domain.DeliverFunc[[]domain.Genre]) {
		a.catalog.Genres(cmd.Context(), genresRefresh, deliver)
	})
	if err != nil {
		if genres == nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "refresh failed: %v (showing cached data)\n", err)
	}

	if len(genres) == 0 {
		fmt.Println("(no genres)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSONGS\tALBUMS")
	for _, g := range genres {
		fmt.Fprintf(w, "%s\t%d\t%d\n", g.Name, g.SongCount, g.AlbumCount)
	}
	return w.Flush()
}
