package database

import (
	"log"

	"teamhub/config"
	"teamhub/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	var err error
	DB, err = Open(postgres.Open(cfg.DatabaseURL))
	if err != nil {
		return err
	}

	if err := Migrate(DB); err != nil {
		return err
	}

	return seedDefaultAdmin(cfg)
}

// Open applies the shared GORM configuration. TranslateError turns
// driver-specific unique violations into gorm.ErrDuplicatedKey, which
// the services rely on to break ties under concurrent inserts.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
}

// Migrate creates the schema, including the composite unique index on
// team_members and the partial unique index on PENDING join requests.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.JoinRequest{},
	)
}

func seedDefaultAdmin(cfg *config.Config) error {
	var count int64
	DB.Model(&models.User{}).Where("username = ?", cfg.AdminUsername).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "Administrator",
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminUsername + "@teamhub.local",
		Phone:        "+10000000000",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}

	if result := DB.Create(&admin); result.Error != nil {
		return result.Error
	}

	log.Printf("Default admin user created (username: %s)", cfg.AdminUsername)
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
