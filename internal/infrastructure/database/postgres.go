package database

import (
	"fmt"
	"log"

	"github.com/fretline/buildtrack-api/internal/config"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Info

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
		// User-related entities
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},
		&entity.PasswordResetToken{},
		&entity.InviteToken{},

		// Production entities
		&entity.Factory{},
		&entity.Run{},
		&entity.RunStage{},
		&entity.RunUpdate{},
		&entity.Guitar{},
		&entity.StageTransition{},
		&entity.Note{},
		&entity.NotePhoto{},

		// Client-facing entities
		&entity.Client{},
		&entity.Invoice{},
		&entity.Payment{},
		&entity.CustomShopRequest{},

		// System entities
		&entity.AppSettings{},
		&entity.EmailOutbox{},
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData seeds the database with default data (roles, permissions, admin user)
func SeedDefaultData(db *gorm.DB, adminCfg config.AdminConfig) error {
	log.Println("Seeding default data...")

	// Create default permissions
	var permissions []entity.Permission
	for _, name := range DefaultPermissions() {
		permissions = append(permissions, entity.Permission{Name: name, GuardName: "web"})
	}

	for i := range permissions {
		var existing entity.Permission
		if err := db.Where("name = ?", permissions[i].Name).First(&existing).Error; err != nil {
			if err := db.Create(&permissions[i]).Error; err != nil {
				log.Printf("Warning: failed to create permission %s: %v", permissions[i].Name, err)
			}
		}
	}

	// Reload permissions with IDs
	var allPermissions []entity.Permission
	db.Find(&allPermissions)

	pick := func(names ...string) []entity.Permission {
		var perms []entity.Permission
		for _, name := range names {
			for _, p := range allPermissions {
				if p.Name == name {
					perms = append(perms, p)
					break
				}
			}
		}
		return perms
	}

	rolePermissions := map[string][]entity.Permission{
		entity.RoleAdmin: allPermissions,
	}
	for role, names := range DefaultRolePermissions() {
		if role == entity.RoleAdmin {
			continue
		}
		rolePermissions[role] = pick(names...)
	}

	for _, name := range []string{entity.RoleAdmin, entity.RoleStaff, entity.RoleClient, entity.RoleFactory, entity.RoleAccounting} {
		var existing entity.Role
		if err := db.Where("name = ?", name).First(&existing).Error; err != nil {
			role := entity.Role{
				Name:        name,
				GuardName:   "web",
				Permissions: rolePermissions[name],
			}
			if err := db.Create(&role).Error; err != nil {
				log.Printf("Warning: failed to create %s role: %v", name, err)
			}
		}
	}

	// Create the initial admin user if configured via environment variables
	if adminCfg.Email != "" && adminCfg.Password != "" {
		var existingAdmin entity.User
		if err := db.Where("email = ?", adminCfg.Email).First(&existingAdmin).Error; err != nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminCfg.Password), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("Warning: failed to hash admin password: %v", err)
			} else {
				var adminRole entity.Role
				if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err == nil {
					adminName := adminCfg.Name
					if adminName == "" {
						adminName = "Admin"
					}
					// Split admin name into first and last name
					firstName := adminName
					lastName := ""
					for i, c := range adminName {
						if c == ' ' {
							firstName = adminName[:i]
							lastName = adminName[i+1:]
							break
						}
					}
					adminUser := entity.User{
						ID:        uuid.New(),
						FirstName: firstName,
						LastName:  lastName,
						Email:     adminCfg.Email,
						Password:  string(hashedPassword),
						Active:    true,
						Roles:     []entity.Role{adminRole},
					}
					if err := db.Create(&adminUser).Error; err != nil {
						log.Printf("Warning: failed to create admin user: %v", err)
					} else {
						log.Printf("Admin user created: %s", adminCfg.Email)
					}
				}
			}
		} else {
			log.Printf("Admin user already exists: %s", adminCfg.Email)
		}
	}

	log.Println("Default data seeding completed")
	return nil
}
