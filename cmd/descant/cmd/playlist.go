package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/descant/descant/internal/domain"
)

var playlistRefresh bool

var playlistCmd = &cobra.Command{
	Use:   "playlist <id>",
	Short: "Show a playlist's tracklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylist,
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create <name> [songID...]",
	Short: "Create a playlist on the server",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlaylistCreate,
}

var playlistRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a playlist on the server",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlaylistRename,
}

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a playlist on the server",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistDelete,
}

func init() {
	playlistCmd.Flags().BoolVar(&playlistRefresh, "refresh", false, "bypass the cache and refresh from the server")
	playlistCmd.AddCommand(playlistCreateCmd, playlistRenameCmd, playlistDeleteCmd)
	rootCmd.AddCommand(playlistCmd)
}

func runPlaylist(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	details, err := resolve(cmd.Context(), refreshNote, func(deliver domain.DeliverFunc[*domain.PlaylistDetails]) {
		a.catalog.PlaylistDetails(cmd.Context(), args[0], playlistRefresh, deliver)
	})
	if err != nil {
		if details == nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "refresh failed: %v (showing cached data)\n", err)
	}

	fmt.Printf("%s (%d songs, %s)\n", details.Name, len(details.Songs), details.FormattedDuration())
	if details.Comment != "" {
		fmt.Println(details.Comment)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tTITLE\tARTIST\tLENGTH\tCACHED")
	for i, song := range details.Songs {
		cached := ""
		if a.catalog.CachedStatus(&song) == domain.Cached {
			cached = "✓"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, song.ID, song.Title, song.Artist, song.FormattedDuration(), cached)
	}
	return w.Flush()
}

func runPlaylistCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	details, err := a.catalog.CreatePlaylist(cmd.Context(), args[0], args[1:])
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	fmt.Printf("✓ Created playlist %q (%s)\n", details.Name, details.ID)
	return nil
}

func runPlaylistRename(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	name := args[1]
	if err := a.catalog.UpdatePlaylist(cmd.Context(), args[0], domain.PlaylistChanges{Name: &name}); err != nil {
		return fmt.Errorf("failed to rename playlist: %w", err)
	}

	fmt.Printf("✓ Renamed playlist %s to %q\n", args[0], name)
	return nil
}

func runPlaylistDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.catalog.DeletePlaylist(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	fmt.Printf("✓ Deleted playlist %s\n", args[0])
	return nil
}
