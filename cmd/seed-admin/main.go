// seed-admin creates or refreshes the admin console account.
//
// Usage (from the backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	ADMIN_USERNAME=... ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/models"
)

func main() {
	ctx := context.Background()

	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD are required")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	user, err := models.UpsertAdminUser(ctx, username, email, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin account ready (id=%d username=%s)\n", user.ID, user.Username)
}
