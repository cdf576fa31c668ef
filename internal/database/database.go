package database

import (
	"fmt"
	"log"

	"debate-tab/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open opens a gorm connection for the given driver without touching the package state
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Connect establishes the shared database connection
func Connect(driver, dsn string) error {
	db, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	DB = db

	log.Printf("Database connection established successfully (%s)", driver)
	return nil
}

// Models lists every table the application owns, in migration order
func Models() []interface{} {
	return []interface{}{
		// tournament structure
		&models.Tournament{},
		&models.Institution{},
		&models.VenueGroup{},
		&models.Venue{},
		&models.Division{},
		&models.Team{},
		&models.TeamVenuePreference{},
		&models.Round{},
		&models.Debate{},

		// adjudicators
		&models.Adjudicator{},
		&models.DebateAdjudicator{},
		&models.AdjudicatorConflict{},
		&models.AdjudicatorInstitutionConflict{},
		&models.ActiveAdjudicator{},
		&models.AdjudicatorTestScoreHistory{},

		// audit
		&models.ActionLog{},
		&models.AllocationRun{},
	}
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
