package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/descant/descant/internal/config"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Mark all cached data as unverified",
	Long: "Drop every freshness marker so the next read of each entry refreshes\n" +
		"from the server. Cached data and downloaded files stay on disk.",
	Args: cobra.NoArgs,
	RunE: runInvalidate,
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the local cache and clear the server configuration",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(invalidateCmd, resetCmd)
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.catalog.InvalidateCache(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	fmt.Println("✓ Cache marked for refresh")
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !resetYes {
		fmt.Print("This deletes the local cache and server credentials. Continue? [y/N] ")
		input, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if answer := strings.ToLower(strings.TrimSpace(input)); answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := config.ClearCache(cfg); err != nil {
		return err
	}
	if err := config.ClearServerConfig(); err != nil {
		return err
	}

	fmt.Println("✓ Cache and server configuration cleared")
	return nil
}
