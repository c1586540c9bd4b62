// Command issue-token prints credentials for the archive API: a bearer token
// for importing logs and, with -admin, the bcrypt hash for ADMIN_TOKEN_HASH.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/playmatatu/pong/internal/admin"
	"github.com/playmatatu/pong/internal/config"
)

func main() {
	subject := flag.String("subject", "uploader", "name recorded for imports made with the token")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	adminToken := flag.String("admin", "", "plain admin token to hash")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "change-me-in-production" {
		log.Printf("WARNING: Using default JWT secret. Set JWT_SECRET env var in production!")
	}

	token, err := admin.IssueToken(cfg.JWTSecret, *subject, *ttl, time.Now())
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Fprintf(os.Stdout, "Bearer token for %s (expires in %s):\n%s\n", *subject, *ttl, token)

	if *adminToken != "" {
		hash, err := admin.HashToken(*adminToken)
		if err != nil {
			log.Fatalf("Failed to hash admin token: %v", err)
		}
		fmt.Fprintf(os.Stdout, "\nADMIN_TOKEN_HASH=%s\n", hash)
	}
}
