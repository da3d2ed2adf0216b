package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RostislavDaniliv/eddy-school/internal/models"
	"github.com/RostislavDaniliv/eddy-school/internal/repositories"
)

type BusinessUnitHandler struct {
	buRepo repositories.BusinessUnitRepo
}

func NewBusinessUnitHandler(repo repositories.BusinessUnitRepo) *BusinessUnitHandler {
	return &BusinessUnitHandler{buRepo: repo}
}

// businessUnitUpdate carries the partially updatable fields. Pointers
// distinguish "absent" from zero values.
type businessUnitUpdate struct {
	APIKey             string   `json:"apikey"`
	Name               *string  `json:"name"`
	GPTAPIKey          *string  `json:"gpt_api_key"`
	DocumentsList      *string  `json:"documents_list"`
	SendPulseSecret    *string  `json:"sendpulse_secret"`
	SendPulseID        *string  `json:"sendpulse_id"`
	SmartSenderToken   *string  `json:"smart_sender_token"`
	GoogleCreds        *string  `json:"google_creds"`
	DefaultText        *string  `json:"default_text"`
	PanicText          *string  `json:"panic_text"`
	Temperature        *float32 `json:"temperature"`
	MaxTokens          *int     `json:"max_tokens"`
	ChunkSize          *int     `json:"chunk_size"`
	ChunkOverlap       *int     `json:"chunk_overlap"`
	SimilarityTopK     *int     `json:"similarity_top_k"`
	BotMode            *int     `json:"bot_mode"`
	GPTModel           *string  `json:"gpt_model"`
	EvalPrompt         *string  `json:"eval_prompt"`
	SystemPrompt       *string  `json:"system_prompt"`
	EvalScore          *float64 `json:"eval_score"`
	SendingService     *int     `json:"sending_service"`
	ScriptMode         *int     `json:"script_mode"`
	GPTAssistantID     *string  `json:"gpt_assistant_id"`
	SimilaritySimpleQ  *float64 `json:"similarity_simple_q"`
	IsTrialUserLimits  *bool    `json:"is_trial_user_limits"`
	RequestsCountLimit *int     `json:"requests_count_limit"`
	FileSizeLimit      *int     `json:"file_size_limit"`
	TokenUsedLimit     *int     `json:"token_used"`
	UsageLimitMessage  *string  `json:"usage_limit_message"`
}

// Create godoc
// @Summary Create a business unit
// @Description Registers a new tenant; the apikey is generated server-side
// @Tags BusinessUnits
// @Accept json
// @Produce json
// @Param request body models.BusinessUnit true "Business unit"
// @Success 201 {object} models.BusinessUnit
// @Router /api/1.0/business_unit/create/ [post]
func (h *BusinessUnitHandler) Create(c *fiber.Ctx) error {
	var bu models.BusinessUnit
	if err := c.BodyParser(&bu); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	// keys are always generated, never client-supplied
	bu.APIKey = ""
	if err := h.buRepo.Create(&bu); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create business unit",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(bu)
}

// Update godoc
// @Summary Partially update a business unit
// @Description Applies the supplied fields; the body apikey must match the record
// @Tags BusinessUnits
// @Accept json
// @Produce json
// @Param id path string true "Business unit ID"
// @Param request body businessUnitUpdate true "Fields to update"
// @Success 200 {object} models.BusinessUnit
// @Failure 403 {object} map[string]string
// @Router /api/1.0/business_unit/update/{id} [put]
func (h *BusinessUnitHandler) Update(c *fiber.Ctx) error {
	var upd businessUnitUpdate
	if err := c.BodyParser(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	bu, ok := h.guard(c, upd.APIKey, true)
	if !ok {
		return nil
	}

	applyUpdate(bu, &upd)
	if err := h.buRepo.Save(bu); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update business unit",
		})
	}

	return c.JSON(bu)
}

// Suspend godoc
// @Summary Suspend or reactivate a business unit
// @Description Flips is_active; works on inactive units so they can be reactivated
// @Tags BusinessUnits
// @Accept json
// @Produce json
// @Param id path string true "Business unit ID"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} map[string]string
// @Router /api/1.0/business_unit/suspend/{id} [put]
func (h *BusinessUnitHandler) Suspend(c *fiber.Ctx) error {
	var body struct {
		APIKey   string `json:"apikey"`
		IsActive *bool  `json:"is_active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	// suspend must keep working on already-inactive units
	bu, ok := h.guard(c, body.APIKey, false)
	if !ok {
		return nil
	}

	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}
	if err := h.buRepo.Suspend(bu.ID.String(), active); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to suspend business unit",
		})
	}

	return c.JSON(fiber.Map{"is_active": active})
}

// Delete godoc
// @Summary Delete a business unit
// @Tags BusinessUnits
// @Accept json
// @Produce json
// @Param id path string true "Business unit ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Router /api/1.0/business_unit/update/{id} [delete]
func (h *BusinessUnitHandler) Delete(c *fiber.Ctx) error {
	var body struct {
		APIKey string `json:"apikey"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	bu, ok := h.guard(c, body.APIKey, true)
	if !ok {
		return nil
	}

	if err := h.buRepo.Delete(bu.ID.String()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete business unit",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// guard enforces the apikey-must-match-record check: 403 when the body
// apikey is missing, doesn't match, or (when checkActive) the unit is
// suspended. On failure the rejection is already written and ok is false.
func (h *BusinessUnitHandler) guard(c *fiber.Ctx, apikey string, checkActive bool) (*models.BusinessUnit, bool) {
	bu, err := h.buRepo.GetByID(c.Params("id"))
	if err != nil {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "business unit doesn't exist",
		})
		return nil, false
	}

	if apikey == "" {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "apikey is required",
		})
		return nil, false
	}
	if apikey != bu.APIKey {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Invalid apikey",
		})
		return nil, false
	}
	if checkActive && !bu.IsActive {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Business unit is not active",
		})
		return nil, false
	}

	return bu, true
}

func applyUpdate(bu *models.BusinessUnit, upd *businessUnitUpdate) {
	if upd.Name != nil {
		bu.Name = *upd.Name
	}
	if upd.GPTAPIKey != nil {
		bu.GPTAPIKey = *upd.GPTAPIKey
	}
	if upd.DocumentsList != nil {
		bu.DocumentsList = *upd.DocumentsList
	}
	if upd.SendPulseSecret != nil {
		bu.SendPulseSecret = *upd.SendPulseSecret
	}
	if upd.SendPulseID != nil {
		bu.SendPulseID = *upd.SendPulseID
	}
	if upd.SmartSenderToken != nil {
		bu.SmartSenderToken = *upd.SmartSenderToken
	}
	if upd.GoogleCreds != nil {
		bu.GoogleCreds = *upd.GoogleCreds
	}
	if upd.DefaultText != nil {
		bu.DefaultText = *upd.DefaultText
	}
	if upd.PanicText != nil {
		bu.PanicText = *upd.PanicText
	}
	if upd.Temperature != nil {
		bu.Temperature = *upd.Temperature
	}
	if upd.MaxTokens != nil {
		bu.MaxTokens = *upd.MaxTokens
	}
	if upd.ChunkSize != nil {
		bu.ChunkSize = *upd.ChunkSize
	}
	if upd.ChunkOverlap != nil {
		bu.ChunkOverlap = *upd.ChunkOverlap
	}
	if upd.SimilarityTopK != nil {
		bu.SimilarityTopK = *upd.SimilarityTopK
	}
	if upd.BotMode != nil {
		bu.BotMode = *upd.BotMode
	}
	if upd.GPTModel != nil {
		bu.GPTModel = *upd.GPTModel
	}
	if upd.EvalPrompt != nil {
		bu.EvalPrompt = *upd.EvalPrompt
	}
	if upd.SystemPrompt != nil {
		bu.SystemPrompt = *upd.SystemPrompt
	}
	if upd.EvalScore != nil {
		bu.EvalScore = *upd.EvalScore
	}
	if upd.SendingService != nil {
		bu.SendingService = *upd.SendingService
	}
	if upd.ScriptMode != nil {
		bu.ScriptMode = *upd.ScriptMode
	}
	if upd.GPTAssistantID != nil {
		bu.GPTAssistantID = *upd.GPTAssistantID
	}
	if upd.SimilaritySimpleQ != nil {
		bu.SimilaritySimpleQ = *upd.SimilaritySimpleQ
	}
	if upd.IsTrialUserLimits != nil {
		bu.IsTrialUserLimits = *upd.IsTrialUserLimits
	}
	if upd.RequestsCountLimit != nil {
		bu.RequestsCountLimit = *upd.RequestsCountLimit
	}
	if upd.FileSizeLimit != nil {
		bu.FileSizeLimit = *upd.FileSizeLimit
	}
	if upd.TokenUsedLimit != nil {
		bu.TokenUsedLimit = *upd.TokenUsedLimit
	}
	if upd.UsageLimitMessage != nil {
		bu.UsageLimitMessage = *upd.UsageLimitMessage
	}
}
