package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RostislavDaniliv/eddy-school/internal/core/docsource"
	"github.com/RostislavDaniliv/eddy-school/internal/core/llm"
	"github.com/RostislavDaniliv/eddy-school/internal/core/messenger"
	"github.com/RostislavDaniliv/eddy-school/internal/core/vector"
	"github.com/RostislavDaniliv/eddy-school/internal/models"
	"github.com/RostislavDaniliv/eddy-school/internal/repositories"
	"github.com/RostislavDaniliv/eddy-school/internal/shared/config"
)

// --- fakes ---

type fakeBURepo struct {
	units map[string]*models.BusinessUnit
	saves int
}

func (r *fakeBURepo) GetByAPIKey(apikey string) (*models.BusinessUnit, error) {
	bu, ok := r.units[apikey]
	if !ok {
		return nil, repositories.ErrBusinessUnitNotFound
	}
	return bu, nil
}
func (r *fakeBURepo) GetByID(id string) (*models.BusinessUnit, error) {
	return nil, repositories.ErrBusinessUnitNotFound
}
func (r *fakeBURepo) APIKeyExists(apikey string) (bool, error) { return false, nil }
func (r *fakeBURepo) Create(bu *models.BusinessUnit) error     { return nil }
func (r *fakeBURepo) Save(bu *models.BusinessUnit) error {
	r.saves++
	return nil
}
func (r *fakeBURepo) Suspend(id string, active bool) error       { return nil }
func (r *fakeBURepo) Delete(id string) error                     { return nil }
func (r *fakeBURepo) ListActive() ([]models.BusinessUnit, error) { return nil, nil }

type fakeDocRepo struct {
	docs []models.Document
}

func (r *fakeDocRepo) ListByBusinessUnit(businessUnitID uuid.UUID) ([]models.Document, error) {
	return r.docs, nil
}
func (r *fakeDocRepo) GetByID(id string) (*models.Document, error) { return nil, errors.New("nope") }
func (r *fakeDocRepo) Create(doc *models.Document) error           { return nil }
func (r *fakeDocRepo) Update(doc *models.Document) error           { return nil }
func (r *fakeDocRepo) Delete(id string) error                      { return nil }

type fakeFAQRepo struct {
	faqs []models.SimpleQuestion
}

func (r *fakeFAQRepo) ListByBusinessUnit(businessUnitID uuid.UUID) ([]models.SimpleQuestion, error) {
	return r.faqs, nil
}
func (r *fakeFAQRepo) Create(sq *models.SimpleQuestion) error { return nil }

type fakeHistoryRepo struct {
	logged []models.ChatHistory
	recent []models.ChatHistory
}

func (r *fakeHistoryRepo) Log(record *models.ChatHistory) error {
	r.logged = append(r.logged, *record)
	return nil
}
func (r *fakeHistoryRepo) LastByUser(userID string, limit int) ([]models.ChatHistory, error) {
	return r.recent, nil
}

type fakeTestUserRepo struct {
	users      map[string]*models.TestUser
	increments int
}

func (r *fakeTestUserRepo) GetOrCreate(contactID string) (*models.TestUser, error) {
	if tu, ok := r.users[contactID]; ok {
		return tu, nil
	}
	tu := &models.TestUser{ContactID: contactID}
	r.users[contactID] = tu
	return tu, nil
}
func (r *fakeTestUserRepo) Save(tu *models.TestUser) error { return nil }
func (r *fakeTestUserRepo) IncrementUsage(contactID string, tokens int) error {
	r.increments++
	return nil
}

type fakeChannel struct {
	sent     []string
	triggers []string
	authErr  error
}

func (f *fakeChannel) Authorize(ctx context.Context, bu *models.BusinessUnit) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return "token", nil
}
func (f *fakeChannel) SendText(ctx context.Context, bu *models.BusinessUnit, contactID, sourceType, text string) (string, error) {
	f.sent = append(f.sent, text)
	return `{"success":true}`, nil
}
func (f *fakeChannel) RunTrigger(ctx context.Context, bu *models.BusinessUnit, contactID, sourceType, keyword string) (string, error) {
	f.triggers = append(f.triggers, keyword)
	return `{"success":true}`, nil
}
func (f *fakeChannel) GetProviderName() string { return "fake" }

type fakeVectorService struct {
	collections map[string]bool
	passages    []string
	searches    int
	closed      int
}

func (f *fakeVectorService) CollectionExists(ctx context.Context, name string) (bool, error) {
	return f.collections[name], nil
}
func (f *fakeVectorService) DeleteCollection(ctx context.Context, name string) error {
	delete(f.collections, name)
	return nil
}
func (f *fakeVectorService) CreateCollection(ctx context.Context, name string) error {
	f.collections[name] = true
	return nil
}
func (f *fakeVectorService) AddDocuments(ctx context.Context, collection string, documents []vector.Document) error {
	return nil
}
func (f *fakeVectorService) Close() error {
	f.closed++
	return nil
}
func (f *fakeVectorService) Search(ctx context.Context, collection, query string, limit int, filter *vector.Filter) ([]vector.SearchResult, error) {
	f.searches++
	out := make([]vector.SearchResult, 0, len(f.passages))
	for _, p := range f.passages {
		out = append(out, vector.SearchResult{Payload: map[string]interface{}{"text": p}})
	}
	return out, nil
}

type fakeEngine struct {
	answer     string
	eval       float64
	assistant  bool
	historyGot string
}

func (f *fakeEngine) Query(ctx context.Context, bu *models.BusinessUnit, question, historyBlock string, contextPassages []string) (*llm.QueryResult, error) {
	f.historyGot = historyBlock
	ctxText := ""
	if len(contextPassages) > 0 {
		ctxText = contextPassages[0]
	}
	return &llm.QueryResult{Response: f.answer, EvalResult: f.eval, LLMContext: ctxText, TokensUsed: 42}, nil
}

func (f *fakeEngine) AssistantQuery(ctx context.Context, assistantID, question string) (*llm.QueryResult, error) {
	f.assistant = true
	return &llm.QueryResult{Response: f.answer, EvalResult: 5, LLMContext: "None, it's GPT assistant mode!"}, nil
}

type fakeGoogle struct {
	docs map[string]*docsource.GoogleDoc
}

func (f *fakeGoogle) Fetch(ctx context.Context, documentID string) (*docsource.GoogleDoc, error) {
	doc, ok := f.docs[documentID]
	if !ok {
		return nil, docsource.ErrDocumentNotFound
	}
	return doc, nil
}

type fakeEmbedderSvc struct{}

func (f *fakeEmbedderSvc) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}
func (f *fakeEmbedderSvc) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}
func (f *fakeEmbedderSvc) GetDimensions() int      { return 2 }
func (f *fakeEmbedderSvc) GetProviderName() string { return "fake" }

// --- harness ---

type harness struct {
	svc     *AnswerService
	bu      *models.BusinessUnit
	channel *fakeChannel
	engine  *fakeEngine
	vectors *fakeVectorService
	history *fakeHistoryRepo
	users   *fakeTestUserRepo
	buRepo  *fakeBURepo
	faqRepo *fakeFAQRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	now := time.Now().UTC()
	bu := &models.BusinessUnit{
		ID:                  uuid.New(),
		APIKey:              "0234-abcd",
		GPTAPIKey:           "sk-tenant",
		SendingService:      models.SendPulse,
		SendPulseToken:      "token",
		LastUpdateSendPulse: &now,
		ScriptMode:          models.LLMMode,
		BotMode:             models.StrictMode,
		EvalScore:           3,
		DefaultText:         "A manager will reply soon.",
		GPTModel:            models.GPT35Turbo,
		SimilaritySimpleQ:   0.79,
		IsActive:            true,
	}

	cfg := &config.Config{
		StorageRoot:     t.TempDir(),
		DispatchRetries: 0,
	}

	h := &harness{
		bu:      bu,
		channel: &fakeChannel{},
		engine:  &fakeEngine{answer: "The course starts Monday.", eval: 5},
		vectors: &fakeVectorService{collections: map[string]bool{}, passages: []string{"course schedule"}},
		history: &fakeHistoryRepo{},
		users:   &fakeTestUserRepo{users: map[string]*models.TestUser{}},
		buRepo:  &fakeBURepo{units: map[string]*models.BusinessUnit{bu.APIKey: bu}},
		faqRepo: &fakeFAQRepo{},
	}

	google := &fakeGoogle{docs: map[string]*docsource.GoogleDoc{
		"doc-1": {ID: "doc-1", Title: "Handbook", Text: "course schedule", Modified: now.Add(-time.Hour)},
	}}

	svc := NewAnswerService(cfg, h.buRepo, &fakeDocRepo{docs: []models.Document{{DocumentID: "doc-1"}}}, h.faqRepo, h.history, h.users)
	svc.newProvider = func(sendingService int) (messenger.Provider, error) { return h.channel, nil }
	svc.newGoogle = func(ctx context.Context, credsFile string) (docsource.GoogleFetcher, error) {
		return google, nil
	}
	svc.newVector = func(apiKey string) (VectorService, error) { return h.vectors, nil }
	svc.newEngine = func(apiKey string) (QueryEngine, error) { return h.engine, nil }
	svc.newEmbedder = func(apiKey string) (vector.EmbeddingProvider, error) { return &fakeEmbedderSvc{}, nil }

	h.svc = svc
	return h
}

func request() *AnswerRequest {
	return &AnswerRequest{
		QueryText:  "when does it start?",
		APIKey:     "0234-abcd",
		ContactID:  "contact-1",
		SourceType: "telegram",
		UserID:     "user-1",
	}
}

// --- tests ---

func TestAnswerMissingAPIKey(t *testing.T) {
	h := newHarness(t)
	req := request()
	req.APIKey = ""

	_, err := h.svc.Answer(context.Background(), req)

	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestAnswerUnknownBusinessUnit(t *testing.T) {
	h := newHarness(t)
	req := request()
	req.APIKey = "9999-zzzz"

	_, err := h.svc.Answer(context.Background(), req)

	assert.ErrorIs(t, err, repositories.ErrBusinessUnitNotFound)
}

func TestAnswerInactiveBusinessUnit(t *testing.T) {
	h := newHarness(t)
	h.bu.IsActive = false

	_, err := h.svc.Answer(context.Background(), request())

	assert.ErrorIs(t, err, ErrInactiveBusinessUnit)
	assert.Empty(t, h.channel.sent, "inactive tenant must not reach dispatch")
	assert.Empty(t, h.history.logged, "inactive tenant must not write history")
	assert.Equal(t, 0, h.vectors.searches, "inactive tenant must not touch the index")
}

func TestAnswerFullPipeline(t *testing.T) {
	h := newHarness(t)

	resp, err := h.svc.Answer(context.Background(), request())

	require.NoError(t, err)
	assert.Equal(t, "when does it start?", resp.UserQuestion)
	assert.Equal(t, "The course starts Monday.", resp.Response)
	assert.Equal(t, "course schedule", resp.Chunks)
	require.Len(t, h.channel.sent, 1)
	assert.Equal(t, "The course starts Monday.", h.channel.sent[0])
	assert.NotEmpty(t, resp.SendPulseCont)
	require.Len(t, h.history.logged, 1)
	assert.Equal(t, "user-1", h.history.logged[0].UserID)
	assert.Equal(t, "The course starts Monday.", h.history.logged[0].SystemAnswer)
}

func TestAnswerTokenRefreshFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.bu.SendPulseToken = ""
	h.bu.LastUpdateSendPulse = nil
	h.channel.authErr = errors.New("sendpulse auth is down")

	_, err := h.svc.Answer(context.Background(), request())

	require.Error(t, err)
	assert.Empty(t, h.channel.sent, "undeliverable request must not dispatch")
	assert.Empty(t, h.history.logged, "failed request must not write history")
	assert.Equal(t, 0, h.vectors.searches, "failed request must not touch the index")
}

func TestAnswerClosesVectorClient(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Answer(context.Background(), request())

	require.NoError(t, err)
	assert.Equal(t, 1, h.vectors.closed, "per-request vector client must be released")
}

func TestAnswerStrictModeLowScoreSendsFallback(t *testing.T) {
	h := newHarness(t)
	h.engine.eval = 2.5

	resp, err := h.svc.Answer(context.Background(), request())

	require.NoError(t, err)
	require.Len(t, h.channel.sent, 1)
	assert.Equal(t, "A manager will reply soon.", h.channel.sent[0])
	// the raw model answer is still reported and logged
	assert.Equal(t, "The course starts Monday.", resp.Response)
}

func TestAnswerManagerFlowTriggers(t *testing.T) {
	h := newHarness(t)
	h.bu.BotMode = models.ManagerFlow
	h.engine.eval = 2.5

	_, err := h.svc.Answer(context.Background(), request())

	require.NoError(t, err)
	assert.Empty(t, h.channel.sent)
	require.Len(t, h.channel.triggers, 1)
	assert.Equal(t, "A manager will reply soon.", h.channel.triggers[0])
}

func TestAnswerSoftModeApology(t *testing.T) {
	h := newHarness(t)
	h.bu.BotMode = models.SoftMode
	h.engine.answer = "I'm sorry, I don't know."

	_, err := h.svc.Answer(context.Background(), request())

	require.NoError(t, err)
	require.Len(t, h.channel.sent, 1)
	assert.Equal(t, "A manager will reply soon.", h.channel.sent[0])
}

func TestAnswerFAQShortCircuit(t *testing.T) {
	h := newHarness(t)
	h.faqRepo.faqs = []models.SimpleQuestion{
		{Question: "when does it start?", Answer: "Next Monday at 9am."},
	}

	resp, err := h.svc.Answer(context.Background(), request())

	require.NoError(t, err)
	assert.Equal(t, "Next Monday at 9am.", resp.Response)
	assert.Equal(t, 0, h.vectors.searches, "faq match must skip retrieval")
	require.Len(t, h.channel.sent, 1)
	assert.Equal(t, "Next Monday at 9am.", h.channel.sent[0])
}

func TestAnswerAssistantMode(t *testing.T) {
	h := newHarness(t)
	h.bu.ScriptMode = models.GPTAssistant
	h.bu.GPTAssistantID = "asst_123"

	resp, err := h.svc.Answer(context.Background(), request())

	require.NoError(t, err)
	assert.True(t, h.engine.assistant)
	assert.Equal(t, 0, h.vectors.searches, "assistant mode must skip the index")
	assert.Equal(t, "The course starts Monday.", resp.Response)
}

func TestAnswerMissingDocumentDegrades(t *testing.T) {
	h := newHarness(t)
	svcDocs := &fakeDocRepo{docs: []models.Document{{DocumentID: "gone"}}}
	h.svc.docRepo = svcDocs

	resp, err := h.svc.Answer(context.Background(), request())

	require.NoError(t, err, "missing document degrades to 200, not an error")
	assert.Contains(t, resp.Response, "I'm sorry")
	require.Len(t, h.channel.sent, 1)
}

func TestAnswerTrialLimitReached(t *testing.T) {
	h := newHarness(t)
	h.bu.IsTrialUserLimits = true
	h.bu.RequestsCountLimit = 2
	h.bu.UsageLimitMessage = "Trial limit reached, please subscribe."
	h.users.users["contact-1"] = &models.TestUser{ContactID: "contact-1", RequestCount: 2}

	req := request()
	req.DocumentID = "doc-1"
	resp, err := h.svc.Answer(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "Trial limit reached, please subscribe.", resp.Response)
	require.Len(t, h.channel.sent, 1)
	assert.Equal(t, "Trial limit reached, please subscribe.", h.channel.sent[0])
	assert.Equal(t, 0, h.users.increments)
}

func TestAnswerTrialUsageRecorded(t *testing.T) {
	h := newHarness(t)
	h.bu.IsTrialUserLimits = true
	h.bu.RequestsCountLimit = 10

	req := request()
	req.DocumentID = "doc-1"
	_, err := h.svc.Answer(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, h.users.increments)
}

func TestAnswerInjectsHistory(t *testing.T) {
	h := newHarness(t)
	h.history.recent = []models.ChatHistory{
		{UserQuestion: "earlier question", SystemAnswer: "earlier answer"},
	}

	_, err := h.svc.Answer(context.Background(), request())

	require.NoError(t, err)
	assert.Contains(t, h.engine.historyGot, "earlier question")
	assert.Contains(t, h.engine.historyGot, "earlier answer")
}

func TestAnswerSmartSenderResponseField(t *testing.T) {
	h := newHarness(t)
	h.bu.SendingService = models.SmartSender
	h.bu.SmartSenderToken = "ss-token"

	resp, err := h.svc.Answer(context.Background(), request())

	require.NoError(t, err)
	assert.Empty(t, resp.SendPulseCont)
	assert.NotEmpty(t, resp.SmartSender)
}
