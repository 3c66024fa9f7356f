package database

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sokoni/eventpos-api/internal/config"
	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Warn

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Tenancy entities
		&entity.Organization{},
		&entity.User{},
		&entity.Device{},

		// Catalog entities
		&entity.Event{},
		&entity.Category{},
		&entity.Product{},

		// Order entities
		&entity.Order{},
		&entity.OrderItem{},

		// Payment entities
		&entity.Payment{},
		&entity.OrderItemPayment{},

		// Ledger entities
		&entity.StockMovement{},
		&entity.SequenceCounter{},

		// System entities
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData seeds a default organization with an admin user and an
// active event so a fresh install can take orders right away.
func SeedDefaultData(db *gorm.DB) error {
	log.Println("Seeding default data...")

	var org entity.Organization
	if err := db.Where("slug = ?", "default").First(&org).Error; err != nil {
		org = entity.Organization{
			Name:     "Default Organization",
			Slug:     "default",
			Currency: "EUR",
			Timezone: "Europe/Berlin",
		}
		if err := db.Create(&org).Error; err != nil {
			return fmt.Errorf("failed to create default organization: %w", err)
		}
	}

	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")

	if adminEmail != "" && adminPassword != "" {
		var existingAdmin entity.User
		if err := db.Where("email = ?", adminEmail).First(&existingAdmin).Error; err != nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("Warning: failed to hash admin password: %v", err)
			} else {
				adminUser := entity.User{
					OrganizationID: org.ID,
					FirstName:      "Admin",
					LastName:       "User",
					Email:          adminEmail,
					Password:       string(hashedPassword),
					Capabilities: entity.StringList{
						"orders:write", "orders:cancel", "payments:capture",
						"stock:adjust", "products:write", "events:write",
					},
				}
				if err := db.Create(&adminUser).Error; err != nil {
					log.Printf("Warning: failed to create admin user: %v", err)
				} else {
					log.Printf("Admin user created: %s", adminEmail)
				}
			}
		} else {
			log.Printf("Admin user already exists: %s", adminEmail)
		}
	}

	var event entity.Event
	if err := db.Where("organization_id = ? AND slug = ?", org.ID, "main-bar").First(&event).Error; err != nil {
		now := time.Now()
		ends := now.AddDate(1, 0, 0)
		event = entity.Event{
			OrganizationID: org.ID,
			Name:           "Main Bar",
			Slug:           "main-bar",
			Status:         enum.EventStatusActive,
			StartsAt:       &now,
			EndsAt:         &ends,
		}
		if err := db.Create(&event).Error; err != nil {
			log.Printf("Warning: failed to create default event: %v", err)
		}
	}

	log.Println("Default data seeding completed")
	return nil
}
