package database

import (
	"log"
	"os"
	"time"

	"guild/backend/internal/models"

	"github.com/pkg/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Models lists every table managed by AutoMigrate, parents first.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Game{},
		&models.Review{},
		&models.Favorite{},
		&models.Chat{},
		&models.Message{},
	}
}

// Open opens a database with the application's GORM settings, instruments it
// and runs migrations.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	// Configure GORM logger
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: customLogger,
		// Unique violations come back as gorm.ErrDuplicatedKey whatever the driver.
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, errors.Wrap(err, "register otelgorm plugin")
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, errors.Wrap(err, "migrate database")
	}

	return db, nil
}

// Connect initializes the PostgreSQL connection and runs migrations.
func Connect(dsn string) error {
	db, err := Open(postgres.Open(dsn))
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "db.DB()")
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return errors.Wrap(err, "ping database")
	}

	DB = db
	log.Println("Database connection established and migrated.")
	return nil
}
