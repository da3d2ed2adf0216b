package messenger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

// SmartSenderProvider implements Provider for the SmartSender API. The token
// is a long-lived per-tenant credential, so Authorize just hands it back and
// no refresh cycle is needed.
type SmartSenderProvider struct {
	baseURL string
	client  *http.Client
}

func NewSmartSenderProvider(baseURL string) *SmartSenderProvider {
	return &SmartSenderProvider{
		baseURL: baseURL,
		client:  newHTTPClient(),
	}
}

func (p *SmartSenderProvider) GetProviderName() string {
	return "SmartSender"
}

func (p *SmartSenderProvider) Authorize(ctx context.Context, bu *models.BusinessUnit) (string, error) {
	if bu.SmartSenderToken == "" {
		return "", fmt.Errorf("smartsender token is not configured")
	}
	return bu.SmartSenderToken, nil
}

func (p *SmartSenderProvider) SendText(ctx context.Context, bu *models.BusinessUnit, contactID, sourceType, text string) (string, error) {
	form := url.Values{}
	form.Set("content", text)
	form.Set("type", "text")
	form.Set("watermark", strconv.FormatInt(time.Now().Unix(), 10))

	path := fmt.Sprintf("/v1/contacts/%s/send", contactID)
	return p.postForm(ctx, bu.SmartSenderToken, path, form)
}

// RunTrigger fires a named custom event on the contact. The manager hand-off
// uses the "default_text" event.
func (p *SmartSenderProvider) RunTrigger(ctx context.Context, bu *models.BusinessUnit, contactID, sourceType, keyword string) (string, error) {
	form := url.Values{}
	form.Set("name", keyword)

	path := fmt.Sprintf("/v1/contacts/%s/fire", contactID)
	return p.postForm(ctx, bu.SmartSenderToken, path, form)
}

func (p *SmartSenderProvider) postForm(ctx context.Context, token, path string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return string(body), fmt.Errorf("smartsender error (status %d): %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}
