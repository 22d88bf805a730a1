package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/showbase/showbase/config"
	"github.com/showbase/showbase/pkg/helpers"
)

// Seeds a local database with an admin account and a couple of series rows.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hasher := helpers.NewPasswordHasher(cfg.BcryptCost)
	hash, err := hasher.Hash(context.Background(), "Admin12345")
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (name, email, role, password_hash)
		VALUES ($1, $2, 'admin', $3)
		ON CONFLICT (email) WHERE active DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, "Admin", "admin@showbase.dev", hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=admin@showbase.dev password=Admin12345\n", id)

	series := []struct {
		name     string
		year     int
		network  string
		seasons  int
		episodes int
		rating   float64
	}{
		{"The Wire", 2002, "HBO", 5, 60, 9.3},
		{"Breaking Bad", 2008, "AMC", 5, 62, 9.5},
		{"Twin Peaks", 1990, "ABC", 3, 48, 8.8},
	}
	for _, s := range series {
		if _, err := db.Exec(`
			INSERT INTO series (name, slug, year, network, genres, seasons_number, episodes_number, rating)
			VALUES ($1, $2, $3, $4, '{drama}', $5, $6, $7)
			ON CONFLICT (name) DO NOTHING
		`, s.name, strings.ReplaceAll(strings.ToLower(s.name), " ", "-"), s.year, s.network, s.seasons, s.episodes, s.rating); err != nil {
			log.Fatalf("failed to seed series %q: %v", s.name, err)
		}
	}
	fmt.Println("seeded series")
}
