package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/descant/descant/internal/domain"
)

var artRefresh bool

var artCmd = &cobra.Command{
	Use:   "art <coverArtID>",
	Short: "Fetch cover art and print its local path",
	Args:  cobra.ExactArgs(1),
	RunE:  runArt,
}

func init() {
	artCmd.Flags().BoolVar(&artRefresh, "refresh", false, "re-download even when a verified copy is cached")
	rootCmd.AddCommand(artCmd)
}

func runArt(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	uri, err := resolve(cmd.Context(), "downloading cover art...", func(deliver domain.DeliverFunc[string]) {
		a.catalog.CoverArtURI(cmd.Context(), args[0], artRefresh, deliver)
	})
	if err != nil {
		if uri == "" {
			return err
		}
		fmt.Fprintf(os.Stderr, "refresh failed: %v (showing cached file)\n", err)
	}

	fmt.Println(uri)
	return nil
}
