package messenger

import (
	"context"
	"time"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/utils"
)

// PartResult records the outcome of one chunk of a multi-part delivery.
type PartResult struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
	Delivered bool   `json:"delivered"`
}

// DeliveryReport enumerates what actually reached the channel. Delivery stops
// at the first chunk that keeps failing, so Parts may be shorter than the
// chunk list; Complete is true only when every chunk went out.
type DeliveryReport struct {
	Parts     []PartResult `json:"parts"`
	Delivered int          `json:"delivered"`
	Complete  bool         `json:"complete"`
}

// Responses returns the raw channel responses of delivered parts, in order.
func (r *DeliveryReport) Responses() []string {
	out := make([]string, 0, r.Delivered)
	for _, p := range r.Parts {
		if p.Delivered {
			out = append(out, p.Response)
		}
	}
	return out
}

// Dispatcher sends chunked messages through a channel provider with a small
// per-chunk retry.
type Dispatcher struct {
	retries int
	backoff time.Duration
}

func NewDispatcher(retries int) *Dispatcher {
	if retries < 0 {
		retries = 0
	}
	return &Dispatcher{retries: retries, backoff: 500 * time.Millisecond}
}

// Dispatch splits text into parts of at most MaxMessageLength and sends them
// in order. Chunks already delivered stay delivered; a chunk that fails after
// retries aborts the rest and the report marks the delivery incomplete.
func (d *Dispatcher) Dispatch(ctx context.Context, provider Provider, bu *models.BusinessUnit, contactID, sourceType, text string) *DeliveryReport {
	parts := SplitText(text, MaxMessageLength)
	report := &DeliveryReport{Parts: make([]PartResult, 0, len(parts))}

	for i, part := range parts {
		resp, err := d.sendWithRetry(ctx, provider, bu, contactID, sourceType, part)
		result := PartResult{Index: i, Text: part}
		if err != nil {
			result.Error = err.Error()
			report.Parts = append(report.Parts, result)
			utils.LogError("chunk delivery failed", err, map[string]interface{}{
				"business_unit": bu.APIKey,
				"contact_id":    contactID,
				"chunk":         i,
				"total":         len(parts),
			})
			return report
		}
		result.Delivered = true
		result.Response = resp
		report.Parts = append(report.Parts, result)
		report.Delivered++
	}

	report.Complete = report.Delivered == len(parts)
	return report
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, provider Provider, bu *models.BusinessUnit, contactID, sourceType, part string) (string, error) {
	var resp string
	var err error
	for attempt := 0; attempt <= d.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(d.backoff * time.Duration(attempt)):
			}
		}
		resp, err = provider.SendText(ctx, bu, contactID, sourceType, part)
		if err == nil {
			return resp, nil
		}
	}
	return resp, err
}
