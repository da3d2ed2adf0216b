package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"github.com/RostislavDaniliv/eddy-school/internal/core/docsource"
	"github.com/RostislavDaniliv/eddy-school/internal/core/faq"
	"github.com/RostislavDaniliv/eddy-school/internal/core/index"
	"github.com/RostislavDaniliv/eddy-school/internal/core/llm"
	"github.com/RostislavDaniliv/eddy-school/internal/core/messenger"
	"github.com/RostislavDaniliv/eddy-school/internal/core/policy"
	"github.com/RostislavDaniliv/eddy-school/internal/core/vector"
	"github.com/RostislavDaniliv/eddy-school/internal/models"
	"github.com/RostislavDaniliv/eddy-school/internal/repositories"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/config"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/utils"
)

var (
	ErrMissingAPIKey        = errors.New("Apikey parameters are missing")
	ErrInactiveBusinessUnit = errors.New("Business unit isn't active")
)

// documentMissingApology is delivered when a configured Google document is
// gone or unshared. It opens with the apology marker so soft mode swaps it
// for the tenant's fallback text.
const documentMissingApology = "I'm sorry, but I can't find the requested document right now."

const historyDepth = 3

// AnswerRequest is the typed form of the answering endpoint's body.
type AnswerRequest struct {
	QueryText  string `json:"query_text"`
	APIKey     string `json:"apikey"`
	ContactID  string `json:"contact_id"`
	SourceType string `json:"source_type"`
	DocumentID string `json:"document_id,omitempty"`
	Username   string `json:"username,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}

// AnswerResponse mirrors the original response body: the raw model answer
// plus the channel's delivery confirmations.
type AnswerResponse struct {
	UserQuestion  string                    `json:"user_question"`
	Response      string                    `json:"response"`
	Chunks        string                    `json:"chunks,omitempty"`
	SendPulseCont []string                  `json:"sendpulse_cont,omitempty"`
	SmartSender   string                    `json:"smart_sender,omitempty"`
	Delivery      *messenger.DeliveryReport `json:"delivery,omitempty"`
}

// VectorService is the slice of the vector layer the pipeline uses. Clients
// are created per request, so Close releases their connections afterwards.
type VectorService interface {
	index.Store
	Search(ctx context.Context, collection, query string, limit int, filter *vector.Filter) ([]vector.SearchResult, error)
	Close() error
}

// QueryEngine answers questions; *llm.Engine implements it.
type QueryEngine interface {
	Query(ctx context.Context, bu *models.BusinessUnit, question, historyBlock string, contextPassages []string) (*llm.QueryResult, error)
	AssistantQuery(ctx context.Context, assistantID, question string) (*llm.QueryResult, error)
}

// AnswerService runs the whole question-to-delivery pipeline.
type AnswerService struct {
	cfg         *config.Config
	buRepo      repositories.BusinessUnitRepo
	docRepo     repositories.DocumentRepo
	faqRepo     repositories.SimpleQuestionRepo
	historyRepo repositories.ChatHistoryRepo
	testUsers   repositories.TestUserRepo

	tokens     *messenger.TokenManager
	dispatcher *messenger.Dispatcher
	indexes    *index.Manager

	// per-tenant factories; tests substitute fakes
	newProvider func(sendingService int) (messenger.Provider, error)
	newGoogle   func(ctx context.Context, credsFile string) (docsource.GoogleFetcher, error)
	newVector   func(apiKey string) (VectorService, error)
	newEngine   func(apiKey string) (QueryEngine, error)
	newEmbedder func(apiKey string) (vector.EmbeddingProvider, error)
}

func NewAnswerService(
	cfg *config.Config,
	buRepo repositories.BusinessUnitRepo,
	docRepo repositories.DocumentRepo,
	faqRepo repositories.SimpleQuestionRepo,
	historyRepo repositories.ChatHistoryRepo,
	testUsers repositories.TestUserRepo,
) *AnswerService {
	s := &AnswerService{
		cfg:         cfg,
		buRepo:      buRepo,
		docRepo:     docRepo,
		faqRepo:     faqRepo,
		historyRepo: historyRepo,
		testUsers:   testUsers,
		tokens:      messenger.NewTokenManager(buRepo, cfg.DispatchRetries),
		dispatcher:  messenger.NewDispatcher(cfg.DispatchRetries),
		indexes:     index.NewManager(testUsers),
	}

	s.newProvider = func(sendingService int) (messenger.Provider, error) {
		return messenger.NewProvider(sendingService, cfg.SendPulseURL, cfg.SmartSenderURL)
	}
	s.newGoogle = func(ctx context.Context, credsFile string) (docsource.GoogleFetcher, error) {
		return docsource.NewGoogleSource(ctx, credsFile)
	}
	s.newVector = func(apiKey string) (VectorService, error) {
		provider, err := vector.NewQdrantProvider(cfg.QdrantURL, cfg.QdrantAPIKey)
		if err != nil {
			return nil, err
		}
		embedding, err := vector.NewOpenAIEmbeddingProvider(apiKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		return vector.NewService(provider, embedding), nil
	}
	s.newEngine = func(apiKey string) (QueryEngine, error) {
		return llm.NewEngine(apiKey)
	}
	s.newEmbedder = func(apiKey string) (vector.EmbeddingProvider, error) {
		return vector.NewOpenAIEmbeddingProvider(apiKey, cfg.EmbeddingModel)
	}

	return s
}

// Answer validates the request, resolves the tenant and walks the pipeline:
// token refresh, trial quota, FAQ short-circuit, document sync, index ensure,
// retrieval, generation, response policy, chunked dispatch, history write.
func (s *AnswerService) Answer(ctx context.Context, req *AnswerRequest) (*AnswerResponse, error) {
	if req.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	bu, err := s.buRepo.GetByAPIKey(req.APIKey)
	if err != nil {
		return nil, err
	}
	if !bu.IsActive {
		return nil, ErrInactiveBusinessUnit
	}

	provider, err := s.newProvider(bu.SendingService)
	if err != nil {
		return nil, err
	}

	// without a valid token nothing can be delivered, so refresh failure
	// fails the request
	if err := s.tokens.EnsureFresh(ctx, provider, bu); err != nil {
		utils.LogError("token refresh failed", err, map[string]interface{}{
			"business_unit": bu.APIKey,
		})
		return nil, err
	}

	openaiKey := bu.GPTAPIKey
	if openaiKey == "" {
		openaiKey = s.cfg.OpenAIKey
	}

	trial := bu.IsTrialUserLimits && req.DocumentID != ""
	if trial {
		limited, err := s.trialLimitReached(bu, req.ContactID)
		if err != nil {
			return nil, err
		}
		if limited {
			report := s.dispatcher.Dispatch(ctx, provider, bu, req.ContactID, req.SourceType, bu.UsageLimitMessage)
			return s.buildResponse(bu, req, bu.UsageLimitMessage, "", report), nil
		}
	}

	result, err := s.resolveAnswer(ctx, bu, req, openaiKey)
	if err != nil {
		return nil, err
	}

	if trial {
		if err := s.testUsers.IncrementUsage(req.ContactID, result.TokensUsed); err != nil {
			utils.LogWarn("failed to record trial usage", map[string]interface{}{
				"contact_id": req.ContactID,
				"reason":     err.Error(),
			})
		}
	}

	decision := policy.Decide(bu, result.EvalResult, result.Response)

	var report *messenger.DeliveryReport
	if decision.Action == policy.TriggerManager {
		raw, err := provider.RunTrigger(ctx, bu, req.ContactID, req.SourceType, bu.DefaultText)
		if err != nil {
			utils.LogError("manager hand-off failed", err, map[string]interface{}{
				"business_unit": bu.APIKey,
				"contact_id":    req.ContactID,
			})
		}
		report = &messenger.DeliveryReport{
			Parts:     []messenger.PartResult{{Index: 0, Text: decision.Text, Response: raw, Delivered: err == nil}},
			Delivered: boolToInt(err == nil),
			Complete:  err == nil,
		}
	} else {
		report = s.dispatcher.Dispatch(ctx, provider, bu, req.ContactID, req.SourceType, decision.Text)
	}

	s.logHistory(bu, req, result.Response, report)

	return s.buildResponse(bu, req, result.Response, result.LLMContext, report), nil
}

// resolveAnswer produces the raw answer: FAQ match, GPT assistant, or RAG
// over the tenant's document index.
func (s *AnswerService) resolveAnswer(ctx context.Context, bu *models.BusinessUnit, req *AnswerRequest, openaiKey string) (*llm.QueryResult, error) {
	if match, ok := s.tryFAQ(ctx, bu, req.QueryText, openaiKey); ok {
		return &llm.QueryResult{
			Response:   match.Answer,
			EvalResult: 5,
			LLMContext: "",
		}, nil
	}

	engine, err := s.newEngine(openaiKey)
	if err != nil {
		return nil, err
	}

	if bu.ScriptMode == models.GPTAssistant {
		return engine.AssistantQuery(ctx, bu.GPTAssistantID, req.QueryText)
	}

	passages, err := s.retrieveContext(ctx, bu, req, openaiKey)
	if errors.Is(err, docsource.ErrDocumentNotFound) {
		utils.LogWarn("document missing, degrading to apology", map[string]interface{}{
			"business_unit": bu.APIKey,
		})
		return &llm.QueryResult{
			Response:   documentMissingApology,
			EvalResult: 5,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	history, err := s.historyRepo.LastByUser(s.historyKey(req), historyDepth)
	if err != nil {
		utils.LogWarn("failed to load chat history", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	return engine.Query(ctx, bu, req.QueryText, llm.HistoryBlock(history), passages)
}

// retrieveContext syncs the document cache, rebuilds the index when stale and
// returns the top-k passages for the question.
func (s *AnswerService) retrieveContext(ctx context.Context, bu *models.BusinessUnit, req *AnswerRequest, openaiKey string) ([]string, error) {
	google, err := s.newGoogle(ctx, s.credsPath(bu))
	if err != nil {
		return nil, fmt.Errorf("failed to open google source: %w", err)
	}

	vectorSvc, err := s.newVector(openaiKey)
	if err != nil {
		return nil, err
	}
	defer vectorSvc.Close()

	cache := docsource.NewCache(google, s.buRepo)

	// the sync closures run under the namespace lock inside the index
	// manager, so a cache rewrite can never race another request's read
	var ns docsource.Namespace
	if req.DocumentID != "" {
		// ad hoc landing-page document: indexed under the contact, not the tenant
		ns = docsource.ForTrial(s.cfg.StorageRoot, req.ContactID)
		load := func() (string, string, error) {
			hash, err := cache.SyncTrial(ctx, ns, []string{req.DocumentID})
			if err != nil {
				return "", "", err
			}
			text, err := cache.CachedText(ns)
			return text, hash, err
		}
		if err := s.indexes.EnsureTrial(ctx, vectorSvc, ns, load, req.ContactID, bu.ChunkSize, bu.ChunkOverlap); err != nil {
			return nil, err
		}
	} else {
		ns = docsource.ForBusinessUnit(s.cfg.StorageRoot, bu.APIKey)
		googleIDs, files, err := s.documentSet(bu)
		if err != nil {
			return nil, err
		}
		load := func() (string, bool, error) {
			changed, err := cache.Sync(ctx, ns, bu, googleIDs, files)
			if err != nil {
				return "", false, err
			}
			text, err := cache.CachedText(ns)
			return text, changed, err
		}
		if err := s.indexes.Ensure(ctx, vectorSvc, ns, load, bu.ChunkSize, bu.ChunkOverlap); err != nil {
			return nil, err
		}
	}

	topK := bu.SimilarityTopK
	if topK <= 0 {
		topK = 1
	}

	results, err := vectorSvc.Search(ctx, ns.Key(), req.QueryText, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("context search failed: %w", err)
	}

	passages := make([]string, 0, len(results))
	for _, r := range results {
		if t := r.Text(); t != "" {
			passages = append(passages, t)
		}
	}
	return passages, nil
}

// tryFAQ checks the tenant's simple questions; any failure just skips the
// short-circuit.
func (s *AnswerService) tryFAQ(ctx context.Context, bu *models.BusinessUnit, question, openaiKey string) (*faq.Match, bool) {
	faqs, err := s.faqRepo.ListByBusinessUnit(bu.ID)
	if err != nil {
		utils.LogWarn("failed to load simple questions", map[string]interface{}{
			"business_unit": bu.APIKey,
			"reason":        err.Error(),
		})
		return nil, false
	}
	if len(faqs) == 0 {
		return nil, false
	}

	embedder, err := s.newEmbedder(openaiKey)
	if err != nil {
		return nil, false
	}

	match, ok, err := faq.NewMatcher(embedder).FindClosest(ctx, question, faqs, bu.SimilarityThreshold())
	if err != nil {
		utils.LogWarn("faq matching failed", map[string]interface{}{
			"business_unit": bu.APIKey,
			"reason":        err.Error(),
		})
		return nil, false
	}
	return match, ok
}

func (s *AnswerService) trialLimitReached(bu *models.BusinessUnit, contactID string) (bool, error) {
	tu, err := s.testUsers.GetOrCreate(contactID)
	if err != nil {
		return false, err
	}
	if bu.RequestsCountLimit > 0 && tu.RequestCount >= bu.RequestsCountLimit {
		return true, nil
	}
	if bu.TokenUsedLimit > 0 && tu.TokenUsed >= bu.TokenUsedLimit {
		return true, nil
	}
	return false, nil
}

func (s *AnswerService) documentSet(bu *models.BusinessUnit) ([]string, []string, error) {
	docs, err := s.docRepo.ListByBusinessUnit(bu.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var googleIDs, files []string
	for _, d := range docs {
		if d.IsGoogleDoc() {
			googleIDs = append(googleIDs, d.DocumentID)
		} else if d.FilePath != "" {
			files = append(files, d.FilePath)
		}
	}
	return googleIDs, files, nil
}

func (s *AnswerService) credsPath(bu *models.BusinessUnit) string {
	if bu.GoogleCreds != "" {
		return bu.GoogleCreds
	}
	return s.cfg.GoogleCredsFile
}

func (s *AnswerService) historyKey(req *AnswerRequest) string {
	if req.UserID != "" {
		return req.UserID
	}
	return req.ContactID
}

func (s *AnswerService) logHistory(bu *models.BusinessUnit, req *AnswerRequest, answer string, report *messenger.DeliveryReport) {
	record := &models.ChatHistory{
		BusinessUnitID: &bu.ID,
		Username:       req.Username,
		UserID:         s.historyKey(req),
		UserQuestion:   req.QueryText,
		SystemAnswer:   answer,
	}
	if report != nil {
		if raw, err := json.Marshal(report); err == nil {
			record.Delivery = datatypes.JSON(raw)
		}
	}
	if err := s.historyRepo.Log(record); err != nil {
		utils.LogError("failed to write chat history", err, map[string]interface{}{
			"business_unit": bu.APIKey,
		})
	}
}

func (s *AnswerService) buildResponse(bu *models.BusinessUnit, req *AnswerRequest, answer, llmContext string, report *messenger.DeliveryReport) *AnswerResponse {
	resp := &AnswerResponse{
		UserQuestion: req.QueryText,
		Response:     answer,
		Chunks:       llmContext,
		Delivery:     report,
	}
	if bu.SendingService == models.SendPulse {
		resp.SendPulseCont = report.Responses()
	} else {
		if delivered := report.Responses(); len(delivered) > 0 {
			resp.SmartSender = delivered[0]
		}
	}
	return resp
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
