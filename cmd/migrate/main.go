package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"

	"debate-tab/internal/config"
	"debate-tab/internal/database"
)

func main() {
	sqlDir := flag.String("sql", "", "directory of extra .sql files to apply after AutoMigrate")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Open(cfg.Database.Driver, cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Schema up to date (%d tables)", len(database.Models()))

	if *sqlDir == "" {
		return
	}

	files, err := filepath.Glob(filepath.Join(*sqlDir, "*.sql"))
	if err != nil {
		log.Fatalf("Failed to list migration files: %v", err)
	}
	sort.Strings(files)

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("Failed to read migration file: %v", err)
		}

		log.Printf("Applying migration: %s", filepath.Base(file))
		if err := db.Exec(string(sqlBytes)).Error; err != nil {
			log.Fatalf("Failed to apply migration %s: %v", filepath.Base(file), err)
		}
	}

	log.Printf("Applied %d migration files", len(files))
}
