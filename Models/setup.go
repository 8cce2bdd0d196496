package Models

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using defaults")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "database.db"
	}

	connection, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	DB = connection

	// 1. Base reference data first
	DB.AutoMigrate(
		&Department{},
		&User{},
	)

	// 2. Then projects and the records hanging off them
	DB.AutoMigrate(
		&Project{},
		&ProjectEvaluation{}, // Depends on Project and User
		&AttendanceRecord{},  // Depends on User
	)

	// 3. Finally completion snapshots and their items
	DB.AutoMigrate(
		&CompletionSnapshot{},
		&SnapshotItem{}, // Depends on CompletionSnapshot
	)
}
