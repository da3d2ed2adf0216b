package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
)

func tenant(mode int) *models.BusinessUnit {
	return &models.BusinessUnit{
		BotMode:     mode,
		EvalScore:   3,
		DefaultText: "A manager will get back to you.",
	}
}

func TestStrictModeBelowThreshold(t *testing.T) {
	d := Decide(tenant(models.StrictMode), 2.5, "The course starts Monday.")

	assert.Equal(t, SendFallback, d.Action)
	assert.Equal(t, "A manager will get back to you.", d.Text)
}

func TestStrictModeAboveThreshold(t *testing.T) {
	d := Decide(tenant(models.StrictMode), 3.5, "The course starts Monday.")

	assert.Equal(t, SendAnswer, d.Action)
	assert.Equal(t, "The course starts Monday.", d.Text)
}

func TestManagerFlowLowConfidenceTriggers(t *testing.T) {
	d := Decide(tenant(models.ManagerFlow), 2.5, "The course starts Monday.")

	assert.Equal(t, TriggerManager, d.Action)
	assert.Equal(t, "A manager will get back to you.", d.Text)
}

func TestManagerFlowApologyTriggers(t *testing.T) {
	d := Decide(tenant(models.ManagerFlow), 5, "I'm sorry, I don't know that.")

	assert.Equal(t, TriggerManager, d.Action)
}

func TestManagerFlowConfidentAnswers(t *testing.T) {
	d := Decide(tenant(models.ManagerFlow), 5, "The course starts Monday.")

	assert.Equal(t, SendAnswer, d.Action)
	assert.Equal(t, "The course starts Monday.", d.Text)
}

func TestSoftModeApologyFallsBack(t *testing.T) {
	d := Decide(tenant(models.SoftMode), 5, "I'm sorry, I can't help with that.")

	assert.Equal(t, SendFallback, d.Action)
	assert.Equal(t, "A manager will get back to you.", d.Text)
}

func TestSoftModeIgnoresScore(t *testing.T) {
	d := Decide(tenant(models.SoftMode), 0, "The course starts Monday.")

	assert.Equal(t, SendAnswer, d.Action)
	assert.Equal(t, "The course starts Monday.", d.Text)
}
