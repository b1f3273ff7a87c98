package config

import (
	"log"

	"gorm.io/gorm"

	"github.com/Afsalkalladi/mess-management/internal/adapters/persistence/models"
	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/pkg/password"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedSettings(); err != nil {
		return err
	}
	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedSettings ensures the single settings row exists
func (s *Seeder) seedSettings() error {
	var count int64
	s.db.Model(&models.Settings{}).Count(&count)
	if count > 0 {
		return nil
	}

	return s.db.Create(&models.Settings{ID: 1, QRSecretVersion: 1}).Error
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.AdminUser{}).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.AdminUser{
		Username: "admin",
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("🔑 Default admin user created (username: admin)")
	return nil
}
