// Command admintoken mints a bearer token for the admin API using the same
// signing key and issuer as the server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "verigate/internal/jwt_token"
	"verigate/internal/platform/config"
	id "verigate/pkg/domain"
	"verigate/pkg/platform/middleware/auth"
)

func main() {
	actor := flag.String("actor", "", "admin actor id (uuid)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	configPath := flag.String("config", os.Getenv("VERIGATE_CONFIG"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	actorID, err := id.ParseActorID(*actor)
	if err != nil {
		fmt.Fprintln(os.Stderr, "-actor must be a uuid")
		os.Exit(2)
	}

	token, err := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer).
		GenerateAdminToken(actorID, auth.RoleAdmin, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
