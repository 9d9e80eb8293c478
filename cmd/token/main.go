// Command token prints a signed access token for an owner, for local use
// against an API running with AUTH_REQUIRED=true.
package main

import (
	"flag"
	"fmt"
	"os"

	"studyplanner/internal/auth"
	"studyplanner/internal/config"
)

func main() {
	cfg := config.Load()
	owner := flag.String("owner", cfg.DefaultOwnerID, "owner id to put in the token subject")
	ttl := flag.Duration("ttl", cfg.AccessTTL, "token lifetime")
	flag.Parse()

	tok, err := auth.Issue(*owner, cfg.JWTIssuer, cfg.JWTSigningKey, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}
	fmt.Println(tok.AccessToken)
}
