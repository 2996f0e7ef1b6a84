package services

import (
	"context"
	"errors"
	"log"

	"wiseman-bank/internal/adapters/persistence/models"
	"wiseman-bank/internal/adapters/persistence/repositories"
	"wiseman-bank/internal/config"
	"wiseman-bank/internal/core/domain"
	"wiseman-bank/internal/pkg/jwt"
	"wiseman-bank/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailAlreadyExists  = errors.New("email already registered")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrWeakPassword        = errors.New("password does not meet the policy")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrAccountDeleted      = errors.New("account has been removed")
	ErrWrongPassword       = errors.New("current password is incorrect")
)

// AuthService handles authentication business logic
type AuthService struct {
	accountRepo      repositories.AccountRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	bankRepo         repositories.BankRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	accountRepo repositories.AccountRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	bankRepo repositories.BankRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		accountRepo:      accountRepo,
		refreshTokenRepo: refreshTokenRepo,
		bankRepo:         bankRepo,
		cfg:              cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	RepeatPassword string `json:"repeat_password" validate:"required"`
	ReferralCode   string `json:"referral_code" validate:"required"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Account      *models.AccountResponse `json:"account"`
	AccessToken  string                  `json:"access_token"`
	RefreshToken string                  `json:"refresh_token"`
}

// Register signs up a new customer account. The referral code must
// match the bank's current code, and the password must pass the
// sign-up policy.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Passwords must match
	if input.Password != input.RepeatPassword {
		return nil, ErrPasswordMismatch
	}

	// 2. Password policy
	if !password.ValidatePolicy(input.Password) {
		return nil, ErrWeakPassword
	}

	// 3. Referral code check against bank settings
	settings, err := s.bankRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if input.ReferralCode != settings.ReferralCode {
		return nil, ErrInvalidReferralCode
	}

	// 4. Email must be unused
	exists, err := s.accountRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	// 5. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 6. Create account: no loans, watermark unset until first rollover
	account := &models.Account{
		ID:        uuid.New().String(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  hashedPassword,
		Role:      domain.RoleUser.String(),
		Status:    models.AccountStatusActive,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	// 7. Generate and store tokens
	tokens, err := s.generateTokens(account)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, account.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Account registered: %s", account.Email)

	return &AuthResponse{
		Account:      account.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login authenticates an account by email and password
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	account, err := s.accountRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if account.Status == models.AccountStatusDeleted {
		return nil, ErrAccountDeleted
	}

	if !password.Verify(input.Password, account.Password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokens(account)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, account.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Account logged in: %s", account.Email)

	return &AuthResponse{
		Account:      account.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RefreshToken rotates the refresh token and issues a new access token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	tokenHash := password.HashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	account, err := s.accountRepo.GetByID(ctx, claims.AccountID)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	if account.Status == models.AccountStatusDeleted {
		return nil, ErrAccountDeleted
	}

	// Token rotation: old refresh token dies with this exchange
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(account)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, account.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Account:      account.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}
	log.Printf("✅ Account logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for an account
func (s *AuthService) LogoutAll(ctx context.Context, accountID string) error {
	if err := s.refreshTokenRepo.RevokeAllByAccountID(ctx, accountID); err != nil {
		return err
	}
	log.Printf("✅ All sessions revoked for account %s", accountID)
	return nil
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	RepeatPassword  string `json:"repeat_password" validate:"required"`
}

// ChangePassword verifies the current password and replaces it. All
// other sessions are revoked.
func (s *AuthService) ChangePassword(ctx context.Context, accountID string, input *ChangePasswordInput) error {
	if input.NewPassword != input.RepeatPassword {
		return ErrPasswordMismatch
	}
	if !password.ValidatePolicy(input.NewPassword) {
		return ErrWeakPassword
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if !password.Verify(input.CurrentPassword, account.Password) {
		return ErrWrongPassword
	}

	hashedPassword, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	account.Password = hashedPassword
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	return s.refreshTokenRepo.RevokeAllByAccountID(ctx, accountID)
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetAccountByID gets an account by ID
func (s *AuthService) GetAccountByID(ctx context.Context, accountID string) (*models.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(account *models.Account) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		account.ID,
		account.Email,
		account.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()
	refreshToken, err := jwt.GenerateRefreshToken(
		account.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, accountID string, refreshToken string) error {
	token := &models.RefreshToken{
		AccountID: accountID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	return s.refreshTokenRepo.Create(ctx, token)
}
