// Command issue-token prints a signed claim token for local development.
// It stands in for the identity service, signing with the same JWT_SECRET
// the services trust.
package main

import (
	"fmt"
	"os"

	"culturemap/internal/auth"
	"culturemap/internal/config"

	flag "github.com/spf13/pflag"
)

func main() {
	var (
		id   = flag.Uint("id", 0, "subject id (required)")
		name = flag.String("name", "", "display name")
		role = flag.String("role", string(auth.RoleUser), "role: user, organizer or admin")
		ttl  = flag.Duration("ttl", 0, "token lifetime (defaults to JWT_TTL)")
	)
	flag.Parse()

	if *id == 0 {
		fmt.Fprintln(os.Stderr, "--id is required")
		flag.Usage()
		os.Exit(2)
	}
	if auth.ParseRole(*role) != auth.Role(*role) {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	lifetime := cfg.JWTTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, lifetime).Issue(*id, *name, auth.Role(*role))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
