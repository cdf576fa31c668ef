package main

import (
	"context"
	"flag"
	"log"
	"os"

	"debate-tab/internal/config"
	"debate-tab/internal/database"
	"debate-tab/internal/importer"
)

func main() {
	migrate := flag.Bool("migrate", true, "run AutoMigrate before importing")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Printf("usage: %s [-migrate=false] tournament.yaml ...", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.Database.Driver, cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *migrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	ctx := context.Background()
	for _, path := range flag.Args() {
		fixture, err := importer.Load(path)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", path, err)
		}

		res, err := fixture.Apply(ctx, db)
		if err != nil {
			log.Fatalf("Failed to import %s: %v", path, err)
		}

		log.Printf("Imported %s: tournament %d, %d teams, %d adjudicators, %d rounds",
			path, res.TournamentID, len(res.Teams), len(res.Adjudicators), len(res.Rounds))
	}
}
