package storage

import (
	"convention-scheduler-server/models"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Convention{}, // parent tables first
		&models.Venue{},
		&models.ScheduleDay{},
		&models.ScheduleEvent{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Panic("migration failed: " + err.Error())
	}

	// Placement columns are set and cleared together
	db.Exec(`DO $$ BEGIN
		ALTER TABLE schedule_events ADD CONSTRAINT chk_schedule_events_placement
			CHECK ((day_offset IS NULL) = (start_time_minutes IS NULL));
	EXCEPTION WHEN duplicate_object THEN NULL; END $$;`)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	return db
}
