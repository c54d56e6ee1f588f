package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/meublog/blog-api/config"
	"github.com/meublog/blog-api/pkg/helpers"
)

var seedUsers = []struct {
	name  string
	email string
}{
	{"Ana Souza", "ana.souza@example.com"},
	{"Bruno Lima", "bruno.lima@example.com"},
	{"Carla Mendes", "carla.mendes@example.com"},
	{"Diego Ferreira", "diego.ferreira@example.com"},
	{"Elisa Ramos", "elisa.ramos@example.com"},
}

var seedTitles = []string{
	"Getting started with the blog",
	"Five tips for better writing",
	"Why we rebuilt our backend",
	"A week of shipping small things",
	"Notes from the reading group",
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Children first because of the FKs
	if _, err := db.Exec(`DELETE FROM password_reset_tokens`); err != nil {
		log.Fatalf("failed to clear reset tokens: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM articles`); err != nil {
		log.Fatalf("failed to clear articles: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM users`); err != nil {
		log.Fatalf("failed to clear users: %v", err)
	}

	password := "Senha123!"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	userIDs := make([]string, 0, len(seedUsers))
	for _, u := range seedUsers {
		var id string
		err := db.QueryRow(`
			INSERT INTO users (email, password_hash, name)
			VALUES ($1, $2, $3)
			RETURNING id
		`, u.email, hash, u.name).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		userIDs = append(userIDs, id)
	}
	fmt.Printf("seeded %d users (password %s)\n", len(userIDs), password)

	for i := 0; i < 20; i++ {
		title := fmt.Sprintf("%s #%d", seedTitles[i%len(seedTitles)], i+1)
		content := fmt.Sprintf("Post %d of the seed data set. Nothing to see here yet, just enough text to make the list view look alive.", i+1)
		author := userIDs[i%len(userIDs)]
		if _, err := db.Exec(`
			INSERT INTO articles (title, content, author_id)
			VALUES ($1, $2, $3)
		`, title, content, author); err != nil {
			log.Fatalf("failed to seed article %d: %v", i+1, err)
		}
	}
	fmt.Println("seeded 20 articles")
}
