package main

import (
	"fmt"
	"log"
	"os"

	"bakery-support-be/internal/model"
	"bakery-support-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate the vector tables (one per concern)
	tables := []string{
		envOr("PRODUCT_INDEX_TABLE", "product_vectors"),
		envOr("CONVERSATION_INDEX_TABLE", "conversation_vectors"),
		envOr("FEEDBACK_INDEX_TABLE", "feedback_vectors"),
	}

	log.Printf("Step 2: Running AutoMigrate for %d vector tables...", len(tables))

	for _, table := range tables {
		if err := db.Table(table).AutoMigrate(&model.VectorRecord{}); err != nil {
			log.Fatalf("Error: AutoMigrate failed for %s: %v", table, err)
		}
	}

	// 5. Post-Migration: ANN indexes for cosine search
	log.Println("Step 3: Creating similarity indexes...")

	for _, table := range tables {
		sql := fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS idx_%s_embedding ON %s USING hnsw (embedding vector_cosine_ops);`,
			table, table,
		)
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to create similarity index on %s: %v", table, err)
		}
	}

	log.Println("✅ Migration completed successfully")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
