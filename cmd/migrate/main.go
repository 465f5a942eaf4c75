package main

import (
	"log"
	"os"

	"ai-qa-be/internal/model"
	"ai-qa-be/pkg/database"

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

	// 2. Connect to Database
	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Extensions (AutoMigrate does not create them)
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

	// 4. Tables
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Account{},
		&model.Folder{},
		&model.Embedding{},
		&model.Text{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Views
	log.Println("Step 3: Creating Views...")

	postMigrationSQL := []string{
		// texts that take part in scoring
		`CREATE OR REPLACE VIEW indexed_texts AS
		 SELECT t.id AS text_id, t.name, t.folder_id, e.id AS embedding_id, e.model, e.created_at AS indexed_at
		 FROM texts t JOIN embeddings e ON t.embedding_id = e.id
		 WHERE t.deleted_at IS NULL;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("[INFO] Database migration completed.")
}
