package messenger

import (
	"context"
	"fmt"
	"time"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
	"github.com/RostislavDaniliv/eddy-school/internal/repositories"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/utils"
)

// SendPulse access tokens live for an hour; refresh at 50 minutes to keep a
// safety margin.
const TokenTTL = 50 * time.Minute

// TokenManager refreshes short-lived channel tokens and persists them on the
// business unit so concurrent requests reuse the same token. The auth call
// retries with backoff like chunk sends do; without a valid token the whole
// request is undeliverable, so a persistent failure is returned to the
// caller rather than swallowed.
type TokenManager struct {
	buRepo  repositories.BusinessUnitRepo
	retries int
	backoff time.Duration
}

func NewTokenManager(buRepo repositories.BusinessUnitRepo, retries int) *TokenManager {
	if retries < 0 {
		retries = 0
	}
	return &TokenManager{buRepo: buRepo, retries: retries, backoff: 500 * time.Millisecond}
}

// EnsureFresh refreshes the token on bu in place when it is missing or older
// than the TTL. SmartSender tokens are static, so only SendPulse tenants ever
// hit the auth endpoint.
func (m *TokenManager) EnsureFresh(ctx context.Context, provider Provider, bu *models.BusinessUnit) error {
	if bu.SendingService != models.SendPulse {
		return nil
	}
	if bu.SendPulseToken != "" && bu.LastUpdateSendPulse != nil &&
		time.Since(*bu.LastUpdateSendPulse) < TokenTTL {
		return nil
	}

	token, err := m.authorizeWithRetry(ctx, provider, bu)
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}

	now := time.Now().UTC()
	bu.SendPulseToken = token
	bu.LastUpdateSendPulse = &now

	if err := m.buRepo.Save(bu); err != nil {
		return fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	utils.LogInfo("token refreshed", map[string]interface{}{
		"business_unit": bu.APIKey,
		"provider":      provider.GetProviderName(),
	})
	return nil
}

func (m *TokenManager) authorizeWithRetry(ctx context.Context, provider Provider, bu *models.BusinessUnit) (string, error) {
	var token string
	var err error
	for attempt := 0; attempt <= m.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(m.backoff * time.Duration(attempt)):
			}
		}
		token, err = provider.Authorize(ctx, bu)
		if err == nil {
			return token, nil
		}
	}
	return token, err
}
