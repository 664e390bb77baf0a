package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowTokenGuide explains how to give the downloader a session token
func ShowTokenGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "WEVERSE SESSION TOKEN")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The downloader authenticates with your we_access_token cookie.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Option 1: cookie file")
	fmt.Fprintln(w, "   1. Log in at https://weverse.io")
	fmt.Fprintln(w, "   2. Export cookies with a cookies.txt browser extension")
	fmt.Fprintln(w, "      (Netscape format, one cookie per line)")
	fmt.Fprintln(w, "   3. Set cookies_file in config.yaml or pass --cookies <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Option 2: store the token once")
	fmt.Fprintln(w, "   1. Open Developer Tools (F12) on weverse.io")
	fmt.Fprintln(w, "   2. Application/Storage tab -> Cookies -> https://weverse.io")
	fmt.Fprintln(w, "   3. Copy the value of we_access_token")
	fmt.Fprintln(w, "   4. Run: wvdl auth set")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Option 3: export %s=<token>\n", TokenEnvVar)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The token gives full access to your account. Never share it.")
	fmt.Fprintln(w, strings.Repeat("=", 72))
}
