package config

import (
	"log"

	"wiseman-bank/internal/adapters/persistence/models"
	"wiseman-bank/internal/core/domain"
	"wiseman-bank/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedBankSettings(); err != nil {
		return err
	}
	if err := s.seedAdminAccount(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedBankSettings creates the single bank settings row if absent
func (s *Seeder) seedBankSettings() error {
	var count int64
	s.db.Model(&models.BankSettings{}).Count(&count)
	if count > 0 {
		return nil
	}

	settings := &models.BankSettings{
		Balance:      s.cfg.Seed.BankBalance,
		ReferralCode: s.cfg.Seed.ReferralCode,
	}
	if err := s.db.Create(settings).Error; err != nil {
		return err
	}

	log.Printf("✅ Bank settings created [balance: %.2f]", settings.Balance)
	return nil
}

// seedAdminAccount seeds the default admin account.
// In production, set ADMIN_EMAIL and ADMIN_PASSWORD before first run.
func (s *Seeder) seedAdminAccount() error {
	var count int64
	s.db.Model(&models.Account{}).Where("role = ?", domain.RoleAdmin.String()).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash(s.cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.Account{
		ID:        uuid.New().String(),
		FirstName: s.cfg.Seed.AdminFirstName,
		LastName:  s.cfg.Seed.AdminLastName,
		Email:     s.cfg.Seed.AdminEmail,
		Password:  hashedPassword,
		Role:      domain.RoleAdmin.String(),
		Status:    models.AccountStatusActive,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin account created: %s", admin.Email)
	return nil
}
