// Command token issues an operator access token for the guarded admin routes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"waste-bknd/internal/auth"
	"waste-bknd/internal/config"
)

func main() {
	var (
		subject = flag.String("sub", "", "Token subject, e.g. the operator's email")
		ttl     = flag.Duration("ttl", 0, "Token lifetime (default ACCESS_TOKEN_MINUTES)")
		roles   = flag.String("roles", "admin", "Comma-separated roles")
	)
	flag.Parse()

	if strings.TrimSpace(*subject) == "" {
		fmt.Fprintln(os.Stderr, "usage: token -sub <subject> [-ttl 12h] [-roles admin,operator]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWTPrivateKeyPath == "" {
		fmt.Fprintln(os.Stderr, "JWT_PRIVATE_KEY_PATH must be set")
		os.Exit(1)
	}

	mgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTIssuer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jwt: %v\n", err)
		os.Exit(1)
	}

	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.AccessTokenTTL
	}

	var roleList []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}

	token, exp, err := mgr.IssueAccessToken(*subject, lifetime, roleList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.UTC().Format(time.RFC3339))
	fmt.Println(token)
}
