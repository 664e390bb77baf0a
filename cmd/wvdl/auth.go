package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"wvdl/pkg/auth"
	"wvdl/pkg/ui"
)

var authCookies string

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Weverse session token",
	Long: `Manage the we_access_token used to call the Weverse API.

The token is looked up in this order:
  - cookies file (--cookies or cookies_file in config)
  - WVDL_ACCESS_TOKEN environment variable
  - system keychain (when available)
  - encrypted file in ~/.config/wvdl

Never share your token or cookie files!`,
}

var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a session token",
	Long: `Store a session token in the system keychain or, when no keychain is
available, in an encrypted file.

The token is read from the terminal without echo. Piped input is accepted
as well.`,
	Example: `  # Interactive
  wvdl auth set

  # From a cookies.txt export
  wvdl auth set --cookies cookies.txt`,
	Args: cobra.NoArgs,
	RunE: runAuthSet,
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored session token",
	Args:  cobra.NoArgs,
	RunE:  runAuthClear,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which token stores hold a token",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authGuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain how to find your session token",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowTokenGuide(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authClearCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authGuideCmd)

	authSetCmd.Flags().StringVar(&authCookies, "cookies", "", "read the token from a Netscape cookies.txt file")
	authStatusCmd.Flags().StringVar(&authCookies, "cookies", "", "also check a cookies.txt file")
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize token stores: %w", err)
	}

	var value string
	if authCookies != "" {
		content, err := os.ReadFile(authCookies)
		if err != nil {
			return fmt.Errorf("failed to read cookies file: %w", err)
		}
		if value, err = auth.ParseCookieFile(string(content)); err != nil {
			return fmt.Errorf("%s: %w", authCookies, err)
		}
	} else {
		fmt.Print("we_access_token: ")
		if value, err = readSecret(); err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return auth.ErrInvalidToken
	}

	storeName, err := manager.Store(value)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Token stored in " + storeName)
	ui.PrintInfo("Token", auth.MaskToken(value))
	return nil
}

func runAuthClear(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize token stores: %w", err)
	}

	if err := manager.Delete(); err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			ui.PrintWarning("No stored token found")
			return nil
		}
		return err
	}
	ui.PrintSuccess("Stored token removed")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager(authCookies)
	if err != nil {
		return fmt.Errorf("failed to initialize token stores: %w", err)
	}

	ui.PrintHighlight("Token stores (in lookup order)")
	found := false
	for _, st := range manager.Status() {
		switch {
		case st.Found:
			found = true
			ui.PrintInfo(st.Store, st.Masked)
		case st.Err != nil:
			ui.PrintInfo(st.Store, ui.Red(st.Err.Error()))
		default:
			ui.PrintInfo(st.Store, ui.Dim("empty"))
		}
	}

	if !found {
		fmt.Println()
		ui.PrintWarning("No session token available, see 'wvdl auth guide'")
	}
	return nil
}

// readSecret reads one line from stdin, without echo on a terminal
func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
