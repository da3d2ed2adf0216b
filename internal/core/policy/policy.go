package policy

import (
	"strings"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

// Action tells the dispatcher what to do with the decided response.
type Action int

const (
	// SendAnswer delivers Text through the normal chunked send path.
	SendAnswer Action = iota
	// SendFallback delivers the tenant's fallback text instead of the answer.
	SendFallback
	// TriggerManager fires the channel's hand-off flow instead of sending text.
	TriggerManager
)

// apologyMarker is the refusal prefix soft mode reacts to.
const apologyMarker = "I'm sorry"

// Decision is the outcome of the response policy.
type Decision struct {
	Action Action
	Text   string
}

// Decide applies the tenant's bot mode to the generated answer. A simple
// 3-way branch:
//   - strict: fallback text when the evaluation score is below the tenant
//     threshold, otherwise the answer;
//   - manager-flow: same condition, but low confidence hands the contact to
//     a manager flow instead of sending text;
//   - soft: fallback only when the answer opens with the apology marker.
func Decide(bu *models.BusinessUnit, score float64, answer string) Decision {
	switch bu.BotMode {
	case models.ManagerFlow:
		if score < bu.EvalScore || strings.HasPrefix(answer, apologyMarker) {
			return Decision{Action: TriggerManager, Text: bu.DefaultText}
		}
		return Decision{Action: SendAnswer, Text: answer}

	case models.SoftMode:
		if strings.HasPrefix(answer, apologyMarker) {
			return Decision{Action: SendFallback, Text: bu.DefaultText}
		}
		return Decision{Action: SendAnswer, Text: answer}

	default: // strict
		if score < bu.EvalScore {
			return Decision{Action: SendFallback, Text: bu.DefaultText}
		}
		return Decision{Action: SendAnswer, Text: answer}
	}
}
