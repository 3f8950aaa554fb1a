package service

import (
	"context"
	"testing"

	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/repository/memory"
	"etp-authoring-be/pkg/flow"
	"etp-authoring-be/pkg/flow/requirements"
	"etp-authoring-be/pkg/flow/stage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument(t *testing.T) (IDocumentService, *fakeStore, *memory.SessionRepository, *fakePublisher) {
	t.Helper()
	store := newFakeStore()
	sessionRepo := memory.NewSessionRepository()
	pub := &fakePublisher{}
	svc := NewDocumentService(&fakeUowFactory{store: store}, sessionRepo, pub, nopLogger{})
	return svc, store, sessionRepo, pub
}

func seedSession(store *fakeStore, sessionRepo *memory.SessionRepository, st stage.Stage) uuid.UUID {
	id := uuid.New()
	s := flow.NewSession(id.String())
	s.Stage = st
	s.Necessity = "Contratar manutenção predial preventiva para a sede."
	s.Requirements = requirements.FromTexts([]string{
		"Atender à legislação vigente",
		"Prestar serviço contínuo com SLA definido",
	})
	s.Answers.StrategyChoice = "Contratação de empresa especializada"

	store.sessions[id] = &entity.EtpSession{
		Id:    id,
		Title: "Manutenção predial",
		Stage: string(st),
		State: s,
	}
	sessionRepo.Save(s)
	return id
}

func TestPreviewUnknownSession(t *testing.T) {
	svc, _, _, _ := newTestDocument(t)

	_, err := svc.Preview(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPreviewBeforeGeneration(t *testing.T) {
	svc, store, sessionRepo, _ := newTestDocument(t)
	id := seedSession(store, sessionRepo, stage.RefineRequirements)

	_, err := svc.Preview(context.Background(), id)
	assert.ErrorIs(t, err, ErrDocumentNotReady)
}

func TestPreviewReturnsOrderedSections(t *testing.T) {
	svc, store, sessionRepo, _ := newTestDocument(t)
	id := seedSession(store, sessionRepo, stage.Preview)

	res, err := svc.Preview(context.Background(), id)
	require.NoError(t, err)

	require.NotEmpty(t, res.Sections)
	assert.Equal(t, "1_introducao", res.Sections[0].Key)
	last := res.Sections[len(res.Sections)-1]
	assert.Equal(t, "8_justificativa_parcelamento", last.Key)
}

func TestFinalizeRequiresPreviewStage(t *testing.T) {
	svc, store, sessionRepo, _ := newTestDocument(t)
	id := seedSession(store, sessionRepo, stage.ConfirmRequirements)

	_, err := svc.Finalize(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotInPreview)
}

func TestFinalizePublishesAndPersists(t *testing.T) {
	svc, store, sessionRepo, pub := newTestDocument(t)
	id := seedSession(store, sessionRepo, stage.Preview)

	res, err := svc.Finalize(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "finalize", res.Stage)
	assert.True(t, res.Published)

	require.Len(t, pub.published, 1)
	assert.Equal(t, "etp.finalized", pub.published[0].EventType())

	e := store.sessions[id]
	require.NotNil(t, e)
	assert.Equal(t, "finalize", e.Stage)
	assert.NotEmpty(t, e.Parts)
}

func TestFinalizeIsTerminal(t *testing.T) {
	svc, store, sessionRepo, _ := newTestDocument(t)
	id := seedSession(store, sessionRepo, stage.Preview)

	_, err := svc.Finalize(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotInPreview)
}
