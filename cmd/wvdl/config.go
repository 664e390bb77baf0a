package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wvdl/pkg/config"
	"wvdl/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage wvdl configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (WVDL_*)
  - .env files
  - Configuration file (YAML or TOML)
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file.

The file is written to config.yaml in the current directory unless a
different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# wvdl configuration
#
# Environment variables prefixed with WVDL_ override these values,
# e.g. WVDL_MAX_CONNECTIONS=10 or WVDL_COOKIES_FILE=cookies.txt

# Netscape cookies.txt export holding we_access_token (optional when the
# token is stored with 'wvdl auth set')
cookies_file: ""

# Wait for Enter before exiting
keep_open: false

# Maximum concurrent requests, also the number of download workers
max_connections: 20

# One entry per artist, matched case-insensitively against the artist's
# Weverse community name. Omitted paths default to "posts". An omitted
# recent_* downloads the whole feed; 0 disables the feed.
artists:
  example artist:
    artist_download_path: "posts/example"
    moments_download_path: "moments/example"
    recent_artist: 50
    recent_moments: 0

http:
  timeout: 30s
  requests_per_second: 0
  max_retries: 3
  retry_delay: 1s

logging:
  # debug, info, warn, error, disabled
  level: "warn"
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Add the artists you want to download")
	fmt.Println("2. Run 'wvdl auth set' or set cookies_file")
	fmt.Println("3. Run 'wvdl config validate', then 'wvdl'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			ui.PrintError("Configuration has errors")
			for _, e := range joined.Unwrap() {
				fmt.Printf("  - %s\n", e)
			}
			os.Exit(1)
		}
		return err
	}

	for _, name := range cfg.ArtistNames() {
		ac := cfg.Artists[name]
		if ac.RecentArtist != nil && *ac.RecentArtist <= 0 &&
			ac.RecentMoments != nil && *ac.RecentMoments <= 0 {
			ui.PrintWarning("Both feeds disabled for artist", name)
		}
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Artists: %d\n", len(cfg.Artists))
	fmt.Printf("  Max connections: %d\n", cfg.MaxConnections)
	if cfg.HTTP.RequestsPerSecond > 0 {
		fmt.Printf("  Rate limit: %.1f requests/second\n", cfg.HTTP.RequestsPerSecond)
	}
	fmt.Printf("  Max retries: %d\n", cfg.HTTP.MaxRetries)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
