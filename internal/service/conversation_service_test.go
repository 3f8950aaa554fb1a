package service

import (
	"context"
	"strings"
	"testing"

	"etp-authoring-be/internal/dto"
	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/repository/contract"
	"etp-authoring-be/internal/repository/memory"
	"etp-authoring-be/internal/repository/specification"
	"etp-authoring-be/internal/repository/unitofwork"
	"etp-authoring-be/pkg/events"
	"etp-authoring-be/pkg/llm/fallback"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory doubles -------------------------------------------------

type fakeStore struct {
	sessions map[uuid.UUID]*entity.EtpSession
	messages []*entity.EtpMessage
	chunks   []*entity.KbChunk
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[uuid.UUID]*entity.EtpSession{}}
}

type fakeUowFactory struct{ store *fakeStore }

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct{ store *fakeStore }

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) EtpSessionRepository() contract.EtpSessionRepository {
	return &fakeSessionRepo{store: u.store}
}
func (u *fakeUow) EtpMessageRepository() contract.EtpMessageRepository {
	return &fakeMessageRepo{store: u.store}
}
func (u *fakeUow) KbChunkRepository() contract.KbChunkRepository {
	return &fakeChunkRepo{store: u.store}
}

type fakeSessionRepo struct{ store *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, s *entity.EtpSession) error {
	r.store.sessions[s.Id] = s
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, s *entity.EtpSession) error {
	r.store.sessions[s.Id] = s
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.EtpSession, error) {
	var found *entity.EtpSession
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			found = r.store.sessions[byID.ID]
		}
	}
	if found == nil {
		return nil, nil
	}
	for _, spec := range specs {
		if byUser, ok := spec.(specification.ByUserId); ok && found.UserId != byUser.UserId {
			return nil, nil
		}
	}
	return found, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EtpSession, error) {
	out := make([]*entity.EtpSession, 0, len(r.store.sessions))
	for _, s := range r.store.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.sessions)), nil
}

type fakeMessageRepo struct{ store *fakeStore }

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.EtpMessage) error {
	r.store.messages = append(r.store.messages, m)
	return nil
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeMessageRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EtpMessage, error) {
	return r.store.messages, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.messages)), nil
}

type fakeChunkRepo struct{ store *fakeStore }

func (r *fakeChunkRepo) Create(ctx context.Context, c *entity.KbChunk) error {
	r.store.chunks = append(r.store.chunks, c)
	return nil
}

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, cs []*entity.KbChunk) error {
	r.store.chunks = append(r.store.chunks, cs...)
	return nil
}

func (r *fakeChunkRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	kept := r.store.chunks[:0]
	for _, c := range r.store.chunks {
		if c.DocumentId != documentId {
			kept = append(kept, c)
		}
	}
	r.store.chunks = kept
	return nil
}

func (r *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KbChunk, error) {
	return nil, nil
}

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KbChunk, error) {
	return r.store.chunks, nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.chunks)), nil
}

func (r *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredKbChunk, error) {
	return nil, nil
}

func (r *fakeChunkRepo) SearchByContent(ctx context.Context, tokens []string, limit int) ([]*entity.KbChunk, error) {
	return nil, nil
}

type fakePublisher struct{ published []events.Event }

func (p *fakePublisher) PublishEvent(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func (p *fakePublisher) PublishKbContent(ctx context.Context, documentId uuid.UUID, sectionType, content string) error {
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// -----------------------------------------------------------------------

func newTestConversation(t *testing.T) (IConversationService, *fakeStore, *fakePublisher) {
	t.Helper()
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewConversationService(
		&fakeUowFactory{store: store},
		memory.NewSessionRepository(),
		fallback.New(),
		nil, // no kb retriever
		pub,
		nopLogger{},
		1000,
	)
	return svc, store, pub
}

func send(t *testing.T, svc IConversationService, userId, sessionId uuid.UUID, text string) *dto.ProcessMessageResponse {
	t.Helper()
	res, err := svc.ProcessMessage(context.Background(), userId, &dto.ProcessMessageRequest{
		SessionId: sessionId,
		Message:   text,
	})
	require.NoError(t, err)
	require.True(t, res.Success, "reply: %s", res.AiResponse)
	return res
}

func TestCreateSessionStartsAtNecessity(t *testing.T) {
	svc, store, _ := newTestConversation(t)
	userId := uuid.New()

	res, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)

	assert.Equal(t, "collect_need", res.Stage)
	assert.Contains(t, res.AiResponse, "necessidade")

	e := store.sessions[res.SessionId]
	require.NotNil(t, e)
	assert.Equal(t, "Estudo Técnico Preliminar", e.Title)
	assert.Equal(t, userId, e.UserId)
}

func TestConversationHappyPath(t *testing.T) {
	svc, store, pub := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{Title: "Manutenção predial"})
	require.NoError(t, err)
	id := created.SessionId

	// necessity: the fallback provider returns an empty payload, so the
	// deterministic 12-item template kicks in
	res := send(t, svc, userId, id, "Contratar serviço de manutenção predial preventiva e corretiva para a sede.")
	assert.Equal(t, "refine_requirements", res.Stage)
	require.Len(t, res.Requirements, 12)

	// one edit, list renumbers
	res = send(t, svc, userId, id, "remover R2")
	assert.Equal(t, "refine_requirements", res.Stage)
	assert.Len(t, res.Requirements, 11)

	// confirmation locks the list and opens the strategy menu
	res = send(t, svc, userId, id, "confirmo os requisitos")
	assert.Equal(t, "confirm_requirements", res.Stage)
	assert.Equal(t, "solution_strategies", res.Topic)
	assert.Contains(t, res.AiResponse, "1.")

	// pick a strategy by number
	res = send(t, svc, userId, id, "1")
	assert.Equal(t, "pca", res.Topic)

	res = send(t, svc, userId, id, "sim, previsto no PCA")
	assert.Equal(t, "legal_basis", res.Topic)

	res = send(t, svc, userId, id, "Lei 14.133/2021, art. 75")
	assert.Equal(t, "qty_value", res.Topic)

	res = send(t, svc, userId, id, "10 unidades, R$ 1,2 milhões por ano")
	assert.Equal(t, "price_research", res.Topic)

	// uncertainty opens the numbered decision
	res = send(t, svc, userId, id, "não sei ainda")
	assert.True(t, res.Pending)
	assert.Contains(t, res.AiResponse, "1. Aceitar")

	// accept: price research goes pendente and the flow moves on
	res = send(t, svc, userId, id, "1")
	assert.False(t, res.Pending)
	assert.Equal(t, "installment", res.Topic)

	res = send(t, svc, userId, id, "não haverá parcelamento")
	assert.Equal(t, "summary", res.Topic)
	assert.Contains(t, res.AiResponse, "Resumo consolidado")

	// generate: assembly is synchronous, so the reply already sits in preview
	res = send(t, svc, userId, id, "pode gerar")
	assert.Equal(t, "preview", res.Stage)
	assert.Contains(t, res.AiResponse, "seções preenchidas")

	res = send(t, svc, userId, id, "mostrar")
	assert.Contains(t, res.AiResponse, "[1_introducao]")
	assert.Contains(t, res.AiResponse, "[4_estimativa_quantidades]")
	assert.Contains(t, res.AiResponse, "[6_estimativa_valor]")
	assert.Contains(t, res.AiResponse, "[8_justificativa_parcelamento]")

	res = send(t, svc, userId, id, "finalizar")
	assert.Equal(t, "finalize", res.Stage)

	require.Len(t, pub.published, 1)
	assert.Equal(t, "etp.finalized", pub.published[0].EventType())

	// persisted entity carries the final stage and the assembled sections
	e := store.sessions[id]
	require.NotNil(t, e)
	assert.Equal(t, "finalize", e.Stage)
	assert.NotEmpty(t, e.Parts)
	assert.NotEmpty(t, store.messages)
}

func TestEmptyMessageIsRejectedInPlace(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)

	res, err := svc.ProcessMessage(context.Background(), userId, &dto.ProcessMessageRequest{
		SessionId: created.SessionId,
		Message:   "   ",
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "collect_need", res.Stage)
}

func TestShortNecessityAsksForDetail(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)

	res := send(t, svc, userId, created.SessionId, "notebooks")
	assert.Equal(t, "collect_need", res.Stage)
	assert.Contains(t, res.AiResponse, "detalhar")
}

func TestRequirementEditsRefusedAfterConfirmation(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	id := created.SessionId

	send(t, svc, userId, id, "Aquisição de notebooks para renovação do parque de máquinas do órgão.")
	send(t, svc, userId, id, "confirmo")

	res := send(t, svc, userId, id, "remover R1")
	assert.Contains(t, res.AiResponse, "travados")
	assert.Equal(t, "confirm_requirements", res.Stage)
}

func TestGenerateRefusedBeforeSummaryTopic(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	id := created.SessionId

	send(t, svc, userId, id, "Aquisição de notebooks para renovação do parque de máquinas do órgão.")

	// still refining: the stage gate answers, the list stays unlocked
	res := send(t, svc, userId, id, "pode gerar o documento")
	assert.Equal(t, "refine_requirements", res.Stage)
	assert.Contains(t, res.AiResponse, "confirm_requirements")
}

func TestDecisionDeferMarksPending(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	id := created.SessionId

	send(t, svc, userId, id, "Contratar manutenção predial preventiva e corretiva para a sede do órgão.")
	send(t, svc, userId, id, "confirmo")
	send(t, svc, userId, id, "1")

	// uncertainty on PCA opens the decision, option 2 defers it
	res := send(t, svc, userId, id, "não sei")
	require.True(t, res.Pending)

	res = send(t, svc, userId, id, "2")
	assert.False(t, res.Pending)
	assert.Equal(t, "legal_basis", res.Topic)
	assert.True(t, strings.Contains(res.AiResponse, "pendente") || strings.Contains(res.AiResponse, "Pendente"))
}

func TestDecisionDiscussReturnsFlowToTopic(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	id := created.SessionId

	send(t, svc, userId, id, "Contratar manutenção predial preventiva e corretiva para a sede do órgão.")
	send(t, svc, userId, id, "confirmo")
	send(t, svc, userId, id, "1")

	res := send(t, svc, userId, id, "não sei")
	require.True(t, res.Pending)

	// option 3 clears the slot: the explanation comes back without the
	// numbered choices re-armed
	res = send(t, svc, userId, id, "3")
	assert.False(t, res.Pending)
	assert.Contains(t, res.AiResponse, "Proposta em aberto")

	// the follow-up answer reaches the PCA interpreter, not the arbiter
	res = send(t, svc, userId, id, "está previsto no pca, item 12")
	assert.False(t, res.Pending)
	assert.Equal(t, "legal_basis", res.Topic)
	assert.Contains(t, res.AiResponse, "Detalhes do PCA registrados")
}

func TestExplicitPendingDefersTopicWithoutDecisionSlot(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	id := created.SessionId

	send(t, svc, userId, id, "Contratar manutenção predial preventiva e corretiva para a sede do órgão.")
	send(t, svc, userId, id, "confirmo")
	send(t, svc, userId, id, "1")

	res := send(t, svc, userId, id, "pode deixar pendente")
	assert.False(t, res.Pending)
	assert.Equal(t, "legal_basis", res.Topic)
	assert.Contains(t, res.AiResponse, "pendente")
}

func TestQtyValueAnswerFillsEstimateSections(t *testing.T) {
	svc, store, _ := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	id := created.SessionId

	send(t, svc, userId, id, "Contratar serviço de vigilância armada para os prédios administrativos.")
	send(t, svc, userId, id, "confirmo")
	send(t, svc, userId, id, "1")
	send(t, svc, userId, id, "sim, previsto no PCA")
	send(t, svc, userId, id, "Lei 14.133/2021, art. 75")

	res := send(t, svc, userId, id, "serão 3 postos de serviço, estimativa de R$ 1,2 milhões por ano")
	assert.Equal(t, "price_research", res.Topic)

	send(t, svc, userId, id, "painel de preços")
	send(t, svc, userId, id, "seguir")
	send(t, svc, userId, id, "não haverá parcelamento")
	send(t, svc, userId, id, "pode gerar")

	res = send(t, svc, userId, id, "mostrar")
	assert.Contains(t, res.AiResponse, "[4_estimativa_quantidades]")
	assert.Contains(t, res.AiResponse, "postos: 3 x 1200000")
	assert.Contains(t, res.AiResponse, "[6_estimativa_valor]")
	assert.Contains(t, res.AiResponse, "Metodologia: Valores estimados por ano")

	require.NotNil(t, store.sessions[id])
}

func TestBareYesInstallmentKeepsSectionClean(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	id := created.SessionId

	send(t, svc, userId, id, "Contratar serviço de limpeza para os três campi da instituição.")
	send(t, svc, userId, id, "confirmo")
	send(t, svc, userId, id, "1")
	send(t, svc, userId, id, "sim, previsto no PCA")
	send(t, svc, userId, id, "Lei 14.133/2021, art. 75")
	send(t, svc, userId, id, "40 postos")
	send(t, svc, userId, id, "painel de preços")
	send(t, svc, userId, id, "seguir")

	res := send(t, svc, userId, id, "sim")
	assert.Equal(t, "summary", res.Topic)

	send(t, svc, userId, id, "pode gerar")
	res = send(t, svc, userId, id, "mostrar")
	assert.Contains(t, res.AiResponse, "A contratação será parcelada.")
	assert.NotContains(t, res.AiResponse, "A contratação será parcelada.\nsim")
}

func TestUnknownSessionIdStartsFreshSession(t *testing.T) {
	svc, store, _ := newTestConversation(t)
	userId := uuid.New()
	id := uuid.New()

	res := send(t, svc, userId, id, "Contratar serviço de limpeza e conservação para os prédios administrativos.")
	assert.Equal(t, "refine_requirements", res.Stage)
	assert.Equal(t, id, res.SessionId)
	require.NotNil(t, store.sessions[id])
}

func TestChatHistoryIsScopedToOwner(t *testing.T) {
	svc, _, _ := newTestConversation(t)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	id := created.SessionId

	send(t, svc, userId, id, "Contratar serviço de telefonia móvel corporativa para todo o órgão.")

	items, err := svc.GetChatHistory(context.Background(), userId, id)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "user", items[len(items)-2].Role)
	assert.Equal(t, "assistant", items[len(items)-1].Role)

	_, err = svc.GetChatHistory(context.Background(), uuid.New(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestOmittedSessionIdMintsOne(t *testing.T) {
	svc, store, _ := newTestConversation(t)
	userId := uuid.New()

	res, err := svc.ProcessMessage(context.Background(), userId, &dto.ProcessMessageRequest{
		Message: "Contratar serviço de vigilância armada para os prédios administrativos.",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.NotEqual(t, uuid.Nil, res.SessionId)
	require.NotNil(t, store.sessions[res.SessionId])
}
