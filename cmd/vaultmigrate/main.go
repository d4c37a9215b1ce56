// One-off: rewrite a legacy base64 vault blob into the versioned vault
// format with a fresh random salt. Reads the blob from stdin, prints the new
// vault JSON to stdout.
// Usage: go run ./cmd/vaultmigrate -user <userID> < legacy.txt
// The password is read from VAULT_PASSWORD.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peerswap/walletcore/internal/crypto"
)

func main() {
	userID := flag.String("user", "", "user id the legacy blob was sealed for")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(1)
	}
	password := os.Getenv("VAULT_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "VAULT_PASSWORD not set")
		os.Exit(1)
	}

	blob, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Accept either a bare base64 string or the same wrapped in JSON quotes.
	raw := strings.TrimSpace(string(blob))
	if !strings.HasPrefix(raw, `"`) && !strings.HasPrefix(raw, "{") {
		quoted, _ := json.Marshal(raw)
		raw = string(quoted)
	}

	vault, err := crypto.MigrateLegacy(json.RawMessage(raw), password, *userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "migration failed:", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(vault, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
