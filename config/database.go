package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nageshcare/nageshcare-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const defaultDatabaseURL = "sqlite://./nageshcare.db"

// ConnectDatabase opens the database at databaseURL and stores it as the global instance.
// postgres:// and postgresql:// URLs use PostgreSQL; anything else is treated as a SQLite path.
func ConnectDatabase(databaseURL string) error {
	if databaseURL == "" {
		// Fallback to a local SQLite file for development
		databaseURL = defaultDatabaseURL
		log.Println("DATABASE_URL not set, using default:", databaseURL)
	}

	db, err := OpenDatabase(databaseURL)
	if err != nil {
		return err
	}
	DB = db

	log.Println("Database connection established successfully")
	return nil
}

// OpenDatabase opens a GORM connection without touching the global instance
func OpenDatabase(databaseURL string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	if IsPostgresURL(databaseURL) {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(SQLitePath(databaseURL))
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// IsPostgresURL reports whether the URL selects the PostgreSQL driver
func IsPostgresURL(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://")
}

// SQLitePath strips the sqlite:// scheme from a database URL
func SQLitePath(databaseURL string) string {
	path := strings.TrimPrefix(databaseURL, "sqlite://")
	// sqlite:///./x.db keeps its relative path
	if strings.HasPrefix(path, "/./") {
		path = path[1:]
	}
	return path
}

// AutoMigrate creates or updates every table the application uses
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SiteSettings{},
		&models.HeroSection{},
		&models.TextContent{},
		&models.CallToAction{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductVariant{},
		&models.FragranceOption{},
		&models.ContactMessage{},
		&models.QuoteRequest{},
		&models.Inquiry{},
		&models.InquiryReply{},
	)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the global database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
