package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"debate-tab/internal/auth"
	"debate-tab/internal/config"
)

// Prints a bearer token for the /api/admin routes.
func main() {
	name := flag.String("name", "admin", "name recorded as the actor in action logs")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	auth.InitJWT(cfg.App.JWTSecret)

	token, err := auth.GenerateToken(*name, auth.RoleAdmin, *ttl)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}
