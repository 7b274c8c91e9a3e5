package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/logistica-platform/api/internal/auth"
)

var baseCidades = []map[string]any{
	{"nome": "SÃO PAULO", "estado": "SP", "regiao": "SUDESTE", "distancia": 0.0},
	{"nome": "CAMPINAS", "estado": "SP", "regiao": "SUDESTE", "distancia": 99.0},
	{"nome": "UBERLÂNDIA", "estado": "MG", "regiao": "SUDESTE", "distancia": 590.0},
	{"nome": "RIBEIRÃO PRETO", "estado": "SP", "regiao": "SUDESTE", "distancia": 313.0},
}

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	email := envOrDefault("SEED_ADMIN_EMAIL", "admin@logistica.local")
	password := envOrDefault("SEED_ADMIN_PASSWORD", "Admin12345!")
	fullName := envOrDefault("SEED_ADMIN_NAME", "Administrador")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (email, full_name, role, password_hash, is_active)
		VALUES ($1, $2, 'admin', $3, true)
		ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name, password_hash = EXCLUDED.password_hash
	`, email, fullName, passwordHash)
	if err != nil {
		log.Fatalf("seed admin user: %v", err)
	}

	for _, cidade := range baseCidades {
		body, err := json.Marshal(cidade)
		if err != nil {
			log.Fatalf("encode cidade: %v", err)
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO records (collection, data)
			SELECT 'cidades', $1::jsonb
			WHERE NOT EXISTS (
				SELECT 1 FROM records
				WHERE collection = 'cidades'
				  AND data->>'nome' = $2
				  AND data->>'estado' = $3
			)
		`, body, cidade["nome"], cidade["estado"])
		if err != nil {
			log.Fatalf("seed cidade %v: %v", cidade["nome"], err)
		}
	}

	fmt.Printf("seeded admin %s and %d base cidades\n", email, len(baseCidades))
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
