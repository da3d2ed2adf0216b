package messenger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

// Provider is the interface every messaging channel implements. Adapters
// differ only in endpoint and payload shape; the pipeline treats them
// uniformly.
type Provider interface {
	// Authorize exchanges tenant credentials for a fresh access token.
	Authorize(ctx context.Context, bu *models.BusinessUnit) (string, error)

	// SendText delivers one text part to a contact. sourceType selects the
	// sub-channel (telegram/viber/live_chat) where the provider has several.
	// Returns the raw response body for the delivery-confirmation field.
	SendText(ctx context.Context, bu *models.BusinessUnit, contactID, sourceType, text string) (string, error)

	// RunTrigger fires a named flow/keyword trigger instead of a plain
	// message (manager hand-off path).
	RunTrigger(ctx context.Context, bu *models.BusinessUnit, contactID, sourceType, keyword string) (string, error)

	// GetProviderName returns the provider name for logging
	GetProviderName() string
}

// NewProvider picks the adapter for the business unit's sending service.
func NewProvider(sendingService int, sendPulseURL, smartSenderURL string) (Provider, error) {
	switch sendingService {
	case models.SendPulse:
		return NewSendPulseProvider(sendPulseURL), nil
	case models.SmartSender:
		return NewSmartSenderProvider(smartSenderURL), nil
	default:
		return nil, fmt.Errorf("unknown sending service: %d", sendingService)
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
