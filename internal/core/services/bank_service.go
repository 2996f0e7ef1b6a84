package services

import (
	"context"
	"errors"
	"log"

	"wiseman-bank/internal/adapters/persistence/models"
	"wiseman-bank/internal/adapters/persistence/repositories"
)

// Bank errors
var (
	ErrNegativeBalance = errors.New("bank balance cannot be negative")
	ErrEmptyReferral   = errors.New("referral code cannot be empty")
)

// BankService handles the bank's global settings
type BankService struct {
	bankRepo repositories.BankRepository
}

// NewBankService creates a new bank service
func NewBankService(bankRepo repositories.BankRepository) *BankService {
	return &BankService{bankRepo: bankRepo}
}

// GetSettings returns the bank's balance and referral code
func (s *BankService) GetSettings(ctx context.Context) (*models.BankSettings, error) {
	return s.bankRepo.Get(ctx)
}

// UpdateBalance sets the bank balance
func (s *BankService) UpdateBalance(ctx context.Context, balance float64) error {
	if balance < 0 {
		return ErrNegativeBalance
	}
	if err := s.bankRepo.UpdateBalance(ctx, balance); err != nil {
		return err
	}
	log.Printf("✅ Bank balance updated to %.2f", balance)
	return nil
}

// UpdateReferralCode replaces the sign-up referral code
func (s *BankService) UpdateReferralCode(ctx context.Context, code string) error {
	if code == "" {
		return ErrEmptyReferral
	}
	if err := s.bankRepo.UpdateReferralCode(ctx, code); err != nil {
		return err
	}
	log.Printf("✅ Referral code updated")
	return nil
}
