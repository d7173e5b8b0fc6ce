// Command tokengen mints a caller JWT for a given ledger identity, and can
// hash an owner token for SOULBOUND_OWNER_TOKEN_HASH. Development utility.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "soulbound/internal/jwt_token"
	"soulbound/pkg/domain"
	"soulbound/pkg/secrets"
)

func main() {
	identity := flag.String("identity", "", "caller identity (0x + 40 hex chars)")
	signingKey := flag.String("signing-key", os.Getenv("SOULBOUND_JWT_SIGNING_KEY"), "JWT signing key")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	hashOwnerToken := flag.Bool("hash-owner-token", false, "generate an owner token and its bcrypt hash instead of a JWT")
	flag.Parse()

	if *hashOwnerToken {
		token, err := secrets.Generate()
		if err != nil {
			fatal("generate owner token: %v", err)
		}
		hash, err := secrets.Hash(token)
		if err != nil {
			fatal("hash owner token: %v", err)
		}
		fmt.Printf("owner token:  %s\n", token)
		fmt.Printf("bcrypt hash:  %s\n", hash)
		return
	}

	if *signingKey == "" {
		fatal("signing key required (flag -signing-key or SOULBOUND_JWT_SIGNING_KEY)")
	}
	caller, err := domain.ParseIdentity(*identity)
	if err != nil {
		fatal("invalid identity: %v", err)
	}

	svc := jwttoken.NewService(*signingKey, "soulbound", *ttl)
	token, err := svc.Generate(caller, time.Now())
	if err != nil {
		fatal("generate token: %v", err)
	}
	fmt.Println(token)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
