package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/descant/descant/internal/config"
	"github.com/descant/descant/internal/log"
	"github.com/descant/descant/internal/subsonic"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the server connection",
	Long:  "Interactively configure the Subsonic server connection and verify it with a ping.",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println()
	fmt.Println("Welcome to descant!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	// Loop until the server accepts the credentials
	for {
		serverURL, err := prompt(reader, "Server URL (e.g. https://music.example.com): ")
		if err != nil {
			return err
		}
		if serverURL == "" {
			fmt.Println("Server URL cannot be empty. Please try again.")
			continue
		}

		username, err := prompt(reader, "Username: ")
		if err != nil {
			return err
		}
		if username == "" {
			fmt.Println("Username cannot be empty. Please try again.")
			continue
		}

		password, err := promptPassword(reader)
		if err != nil {
			return err
		}
		if password == "" {
			fmt.Println("Password cannot be empty. Please try again.")
			continue
		}

		fmt.Print("Checking server... ")
		client := subsonic.NewClient(serverURL, username, password, cfg.Server.ClientName, log.NullLogger())
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		err = client.Ping(ctx)
		cancel()
		if err != nil {
			fmt.Printf("✗ %v\n", err)
			fmt.Println("Please check the details and try again.")
			fmt.Println()
			continue
		}
		fmt.Println("✓")

		cfg.Server.URL = serverURL
		cfg.Server.Username = username
		cfg.Server.Password = password
		break
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// promptPassword reads the password without echoing when stdin is a
// terminal, falling back to a plain read when it is not.
func promptPassword(reader *bufio.Reader) (string, error) {
	fmt.Print("Password: ")
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(reader, "")
	}
	raw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
