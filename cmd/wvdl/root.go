package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"wvdl/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile        string
	cookiesFile       string
	logLevel          string
	maxConnections    int
	requestsPerSecond float64
	keepOpen          bool
	noColor           bool
	verbose           bool
)

// rootCmd downloads every configured feed when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "wvdl",
	Short: "Download Weverse posts and moments for the artists you follow",
	Long: `wvdl downloads posts and moments from Weverse artist feeds.

Every configured artist has its feed listed, each post is fetched and its
photos, videos and text are written to a directory named after the post's
date, id and author. Posts already on disk are skipped, so running wvdl
again only picks up what is new.

Locked posts ask for their password on the terminal; leave the answer
empty to skip the post.`,
	Example: `  # Download using config.yaml in the current directory
  wvdl

  # Use a cookies.txt export and fewer connections
  wvdl --cookies cookies.txt --max-connections 8

  # Store the session token once
  wvdl auth set`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.DisableColor()
		}
		if verbose && !cmd.Flags().Changed("log-level") {
			logLevel = "debug"
		}
	},
	RunE: runDownload,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./config.yaml or ~/.config/wvdl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.Flags().StringVar(&cookiesFile, "cookies", "", "Netscape cookies.txt holding we_access_token")
	rootCmd.Flags().IntVar(&maxConnections, "max-connections", 0, "maximum concurrent requests and workers")
	rootCmd.Flags().Float64Var(&requestsPerSecond, "requests-per-second", 0, "request pacing, 0 disables it")
	rootCmd.Flags().BoolVar(&keepOpen, "keep-open", false, "wait for Enter before exiting")

	rootCmd.SetVersionTemplate(`wvdl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// commandLineFlags collects the flags the user actually set, keyed the way
// config.MergeCommandLineFlags expects.
func commandLineFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("cookies") {
		flags["cookies"] = cookiesFile
	}
	if cmd.Flags().Changed("max-connections") {
		flags["max-connections"] = maxConnections
	}
	if cmd.Flags().Changed("requests-per-second") {
		flags["requests-per-second"] = requestsPerSecond
	}
	if cmd.Flags().Changed("keep-open") {
		flags["keep-open"] = keepOpen
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}
