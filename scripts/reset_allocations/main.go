package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Clears adjudicator panels and allocation runs for one round.
// The draw itself is left untouched.
func main() {
	roundID := flag.Uint("round", 0, "round id to clear")
	dbURL := flag.String("db", "", "postgres connection url (defaults to DB_* environment variables)")
	flag.Parse()

	if *roundID == 0 {
		log.Fatal("-round is required")
	}

	if *dbURL == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
		*dbURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
		)
	}

	db, err := sql.Open("postgres", *dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	tx, err := db.Begin()
	if err != nil {
		log.Fatal("Failed to begin transaction:", err)
	}

	// Step 1: Delete panel placements
	result, err := tx.Exec(`
		DELETE FROM debate_adjudicators
		WHERE debate_id IN (SELECT id FROM debates WHERE round_id = $1)
	`, *roundID)
	if err != nil {
		tx.Rollback()
		log.Fatal("Failed to delete debate_adjudicators:", err)
	}
	rows, _ := result.RowsAffected()
	fmt.Printf("Deleted %d panel placements\n", rows)

	// Step 2: Delete allocation runs
	result, err = tx.Exec(`DELETE FROM allocation_runs WHERE round_id = $1`, *roundID)
	if err != nil {
		tx.Rollback()
		log.Fatal("Failed to delete allocation_runs:", err)
	}
	rows, _ = result.RowsAffected()
	fmt.Printf("Deleted %d allocation runs\n", rows)

	if err := tx.Commit(); err != nil {
		log.Fatal("Failed to commit:", err)
	}

	// Verify cleanup
	var count int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM debate_adjudicators
		WHERE debate_id IN (SELECT id FROM debates WHERE round_id = $1)
	`, *roundID).Scan(&count); err != nil {
		log.Fatal("Failed to verify cleanup:", err)
	}
	fmt.Printf("Remaining placements in round %d: %d\n", *roundID, count)

	fmt.Println("✅ Allocation reset complete!")
}
