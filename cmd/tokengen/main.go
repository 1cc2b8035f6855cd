// Command tokengen signs a development access token with the configured
// secret. Token issuance is not part of the gateway; this is for local
// testing against a running server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/phrazzld/lmsgate/internal/config"
	"github.com/phrazzld/lmsgate/internal/service/auth"
)

func main() {
	userID := flag.Int64("uid", 0, "LMS user id")
	login := flag.String("login", "", "LMS login name")
	apiID := flag.Int64("api-id", 1, "API client id")
	apiKey := flag.String("api-key", "", "API client key")
	scopes := flag.String("scope", "", "space separated scopes")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "tokengen: -uid is required")
		os.Exit(2)
	}

	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}

	svc, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}

	token, err := svc.GenerateToken(context.Background(), auth.AccessToken{
		UserID:    *userID,
		UserName:  *login,
		APIID:     *apiID,
		APIKey:    *apiKey,
		Scopes:    strings.Fields(*scopes),
		ExpiresAt: time.Now().Add(*ttl),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
