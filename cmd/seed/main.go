package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"storefront/config"
	"storefront/pkg/helpers"
)

// Seeds an initial admin account so a fresh deployment has a login.
// Idempotent: re-running updates the existing row instead of failing.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	username := envOr("SEED_ADMIN_USERNAME", "admin")
	email := envOr("SEED_ADMIN_EMAIL", "admin@example.com")
	password := envOr("SEED_ADMIN_PASSWORD", "changeme123")

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	const query = `
		INSERT INTO users (username, email, password_hash, is_admin)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE
		SET username = EXCLUDED.username,
		    password_hash = EXCLUDED.password_hash,
		    is_admin = TRUE,
		    updated_at = NOW()`
	if _, err := db.Exec(query, username, email, hash); err != nil {
		log.Fatalf("seed admin user: %v", err)
	}
	log.Printf("seeded admin user %s (%s)", username, email)
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
