package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/playmatatu/billiards/internal/admin"
)

// Prints the ADMIN_TOKEN_HASH value for ADMIN_TOKEN (or the first argument).
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if len(os.Args) > 1 {
		adminToken = os.Args[1]
	}
	if adminToken == "" {
		log.Fatalf("Usage: seed-admin <token> (or set ADMIN_TOKEN)")
	}
	if len(adminToken) < 16 {
		log.Printf("WARNING: admin token is shorter than 16 characters")
	}

	hash, err := admin.HashAdminToken(adminToken)
	if err != nil {
		log.Fatalf("Failed to hash admin token: %v", err)
	}

	log.Println("✓ Admin token hashed. Add this to the server environment:")
	fmt.Printf("ADMIN_TOKEN_HASH=%s\n", hash)
	log.Printf("Send it as the %s header on /api/v1/admin routes.", admin.TokenHeader)
}
