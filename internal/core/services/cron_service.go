package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// CronService runs the scheduled monthly sweep
type CronService struct {
	cron            *cron.Cron
	rolloverService *RolloverService
	tokenCleaner    TokenCleaner
}

// TokenCleaner removes expired refresh tokens
type TokenCleaner interface {
	DeleteExpired(ctx context.Context) error
}

// NewCronService creates a new cron service
func NewCronService(rolloverService *RolloverService, tokenCleaner TokenCleaner) *CronService {
	return &CronService{
		cron:            cron.New(),
		rolloverService: rolloverService,
		tokenCleaner:    tokenCleaner,
	}
}

// Start registers the jobs and starts the scheduler. The monthly
// sweep runs shortly after midnight on the 1st so every account is
// rolled forward even if nobody logs in.
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc("10 0 1 * *", s.monthlySweep); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 3 * * *", s.cleanupTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("📅 Cron scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron scheduler stopped")
}

func (s *CronService) monthlySweep() {
	log.Println("📅 Monthly sweep: rolling all accounts forward")
	accounts, err := s.rolloverService.RollForwardAll(context.Background())
	if err != nil {
		log.Printf("❌ Monthly sweep failed: %v", err)
		return
	}
	log.Printf("✅ Monthly sweep done: %d accounts current", len(accounts))
}

func (s *CronService) cleanupTokens() {
	if err := s.tokenCleaner.DeleteExpired(context.Background()); err != nil {
		log.Printf("❌ Token cleanup failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens removed")
}
