package database

import (
	"fmt"
	"log"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/config"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// Surfaces unique-constraint violations as gorm.ErrDuplicatedKey so
		// services can map them onto the domain error taxonomy.
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")
	return nil
}

func Migrate() error {
	log.Println("Running database migrations...")
	err := DB.AutoMigrate(
		&models.User{},
		&models.UserTask{},
		&models.Group{},
		&models.Member{},
		&models.GroupTask{},
		&models.MemberTaskRelation{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
