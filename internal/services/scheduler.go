package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/RostislavDaniliv/eddy-school/internal/core/messenger"
	"github.com/RostislavDaniliv/eddy-school/internal/models"
	"github.com/RostislavDaniliv/eddy-school/internal/repositories"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/config"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/utils"
)

// trialCacheTTL is how long an untouched trial namespace survives before the
// nightly sweep removes it.
const trialCacheTTL = 24 * time.Hour

// Scheduler runs the background jobs: proactive channel-token refresh for
// active tenants and garbage collection of stale trial caches.
type Scheduler struct {
	cron   *cron.Cron
	cfg    *config.Config
	buRepo repositories.BusinessUnitRepo
	tokens *messenger.TokenManager
}

func NewScheduler(cfg *config.Config, buRepo repositories.BusinessUnitRepo) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		cfg:    cfg,
		buRepo: buRepo,
		tokens: messenger.NewTokenManager(buRepo, cfg.DispatchRetries),
	}
}

func (s *Scheduler) Start() error {
	// refresh before the 50-minute TTL runs out mid-request
	if _, err := s.cron.AddFunc("*/40 * * * *", s.refreshTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 3 * * *", s.cleanupTrialCaches); err != nil {
		return err
	}

	s.cron.Start()
	utils.LogInfo("scheduler started", map[string]interface{}{
		"jobs": []string{"token_refresh", "trial_cache_gc"},
	})
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) refreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	units, err := s.buRepo.ListActive()
	if err != nil {
		utils.LogError("token refresh sweep failed", err, nil)
		return
	}

	refreshed := 0
	for i := range units {
		bu := &units[i]
		if bu.SendingService != models.SendPulse {
			continue
		}
		provider, err := messenger.NewProvider(bu.SendingService, s.cfg.SendPulseURL, s.cfg.SmartSenderURL)
		if err != nil {
			continue
		}
		if err := s.tokens.EnsureFresh(ctx, provider, bu); err != nil {
			utils.LogWarn("scheduled token refresh failed", map[string]interface{}{
				"business_unit": bu.APIKey,
				"reason":        err.Error(),
			})
			continue
		}
		refreshed++
	}

	utils.LogInfo("token refresh sweep done", map[string]interface{}{
		"active_units": len(units),
		"refreshed":    refreshed,
	})
}

// cleanupTrialCaches removes trial document and index directories that
// haven't been touched within the TTL.
func (s *Scheduler) cleanupTrialCaches() {
	entries, err := os.ReadDir(s.cfg.StorageRoot)
	if err != nil {
		utils.LogError("trial cache sweep failed", err, nil)
		return
	}

	removed := 0
	cutoff := time.Now().Add(-trialCacheTTL)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "documents-trial-") && !strings.HasPrefix(name, "saved_index-trial-") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.cfg.StorageRoot, name)); err != nil {
			utils.LogWarn("failed to remove stale trial cache", map[string]interface{}{
				"dir":    name,
				"reason": err.Error(),
			})
			continue
		}
		removed++
	}

	utils.LogInfo("trial cache sweep done", map[string]interface{}{
		"removed": removed,
	})
}
