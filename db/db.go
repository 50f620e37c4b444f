package db

import (
	"fmt"
	"log"
	"os"

	"uniloans/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	if err := EnsureIndexes(conn); err != nil {
		log.Fatal("Failed to create indexes: ", err)
	}
	if err := SeedDefaults(conn); err != nil {
		log.Fatal("Failed to seed defaults: ", err)
	}
	log.Println("Database connected")
	return conn
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Program{},
		&models.User{},
		&models.Item{},
		&models.Loan{},
		&models.ConfigEntry{},
	)
}

// SeedDefaults inserts the configuration rows the system expects.
// Existing values are never overwritten.
func SeedDefaults(db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ConfigEntry{Key: models.ConfigKeyMaxLoanHours, Value: "2"}).Error
}

// EnsureIndexes creates the Postgres partial indexes. Kept out of
// Migrate so tests can run against other dialects.
func EnsureIndexes(db *gorm.DB) error {
	// at most one open request per user+item
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_request_per_user_item
	  ON %s (usuario_id, implemento)
	  WHERE estado = 'solicitado';
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// the sweep scans active loans by due time
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_active_by_due
	  ON %s (hora_fin_estimada)
	  WHERE estado = 'activo';
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	return nil
}
