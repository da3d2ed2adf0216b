package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

// SendPulse API paths
const (
	sendPulseAuth = "/oauth/access_token"

	sendPulseTelegramMessage = "/telegram/contacts/sendText"
	sendPulseTelegramTrigger = "/telegram/flows/runByTrigger"

	sendPulseViberMessage = "/viber/chatbots/contacts/send"
	sendPulseViberTrigger = "/viber/chatbots/flows/runByTrigger"

	sendPulseLiveChatMessage = "/live-chat/contacts/send"
	sendPulseLiveChatTrigger = "/live-chat/flows/runByTrigger"
)

// SendPulseProvider implements Provider for the SendPulse chatbot API with
// telegram, viber and live_chat sub-channels.
type SendPulseProvider struct {
	baseURL string
	client  *http.Client
}

func NewSendPulseProvider(baseURL string) *SendPulseProvider {
	return &SendPulseProvider{
		baseURL: baseURL,
		client:  newHTTPClient(),
	}
}

func (p *SendPulseProvider) GetProviderName() string {
	return "SendPulse"
}

// Authorize performs the client_credentials exchange and returns the new
// access token.
func (p *SendPulseProvider) Authorize(ctx context.Context, bu *models.BusinessUnit) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", bu.SendPulseID)
	form.Set("client_secret", bu.SendPulseSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+sendPulseAuth, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sendpulse auth failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sendpulse auth failed (status %d): %s", resp.StatusCode, string(body))
	}

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}
	if auth.AccessToken == "" {
		return "", fmt.Errorf("sendpulse auth returned no access_token")
	}

	return auth.AccessToken, nil
}

func (p *SendPulseProvider) SendText(ctx context.Context, bu *models.BusinessUnit, contactID, sourceType, text string) (string, error) {
	switch sourceType {
	case "telegram":
		form := url.Values{}
		form.Set("contact_id", contactID)
		form.Set("text", text)
		return p.postForm(ctx, bu.SendPulseToken, sendPulseTelegramMessage, form)

	case "viber":
		return p.postJSON(ctx, bu.SendPulseToken, sendPulseViberMessage, nestedTextPayload(contactID, text))

	case "live_chat":
		return p.postJSON(ctx, bu.SendPulseToken, sendPulseLiveChatMessage, nestedTextPayload(contactID, text))

	default:
		return "", fmt.Errorf("unknown sendpulse source type: %s", sourceType)
	}
}

func (p *SendPulseProvider) RunTrigger(ctx context.Context, bu *models.BusinessUnit, contactID, sourceType, keyword string) (string, error) {
	paths := map[string]string{
		"telegram":  sendPulseTelegramTrigger,
		"viber":     sendPulseViberTrigger,
		"live_chat": sendPulseLiveChatTrigger,
	}
	path, ok := paths[sourceType]
	if !ok {
		return "", fmt.Errorf("unknown sendpulse source type: %s", sourceType)
	}

	form := url.Values{}
	form.Set("contact_id", contactID)
	form.Set("trigger_keyword", keyword)
	return p.postForm(ctx, bu.SendPulseToken, path, form)
}

// viber and live_chat share the same nested message shape
func nestedTextPayload(contactID, text string) map[string]interface{} {
	return map[string]interface{}{
		"contact_id": contactID,
		"messages": []map[string]interface{}{
			{
				"type": "text",
				"text": map[string]string{"text": text},
			},
		},
	}
}

func (p *SendPulseProvider) postForm(ctx context.Context, token, path string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(req, token)
}

func (p *SendPulseProvider) postJSON(ctx context.Context, token, path string, payload interface{}) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req, token)
}

func (p *SendPulseProvider) do(req *http.Request, token string) (string, error) {
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return string(body), fmt.Errorf("sendpulse error (status %d): %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}
