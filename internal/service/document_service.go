package service

import (
	"context"
	"errors"

	"etp-authoring-be/internal/dto"
	"etp-authoring-be/internal/pkg/logger"
	"etp-authoring-be/internal/repository/memory"
	"etp-authoring-be/internal/repository/specification"
	"etp-authoring-be/internal/repository/unitofwork"
	"etp-authoring-be/pkg/events"
	"etp-authoring-be/pkg/flow"
	"etp-authoring-be/pkg/flow/assembler"
	"etp-authoring-be/pkg/flow/stage"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound  = errors.New("sessão não encontrada")
	ErrDocumentNotReady = errors.New("o documento ainda não foi gerado para esta sessão")
	ErrNotInPreview     = errors.New("a finalização só é permitida na etapa de pré-visualização")
)

// IDocumentService exposes the assembled document: ordered preview and
// finalization with event publication.
type IDocumentService interface {
	Preview(ctx context.Context, sessionId uuid.UUID) (*dto.PreviewResponse, error)
	Finalize(ctx context.Context, sessionId uuid.UUID) (*dto.FinalizeResponse, error)
}

type documentService struct {
	uowFactory  unitofwork.RepositoryFactory
	sessionRepo *memory.SessionRepository
	publisher   IPublisherService
	logger      logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	sessionRepo *memory.SessionRepository,
	publisher IPublisherService,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:  uowFactory,
		sessionRepo: sessionRepo,
		publisher:   publisher,
		logger:      log,
	}
}

func (ds *documentService) Preview(ctx context.Context, sessionId uuid.UUID) (*dto.PreviewResponse, error) {
	s, err := ds.loadState(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	if s.Stage != stage.GenerateDocument && s.Stage != stage.Preview && s.Stage != stage.Finalize {
		return nil, ErrDocumentNotReady
	}

	sections := assembler.Assemble(assembler.FromSession(s))
	resp := &dto.PreviewResponse{
		SessionId: sessionId,
		Stage:     string(s.Stage),
	}
	for _, key := range assembler.Order() {
		content, ok := sections[key]
		if !ok {
			continue
		}
		resp.Sections = append(resp.Sections, dto.PreviewSection{Key: string(key), Content: content})
	}
	return resp, nil
}

func (ds *documentService) Finalize(ctx context.Context, sessionId uuid.UUID) (*dto.FinalizeResponse, error) {
	s, err := ds.loadState(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	if s.Stage != stage.Preview {
		return nil, ErrNotInPreview
	}
	if ok, _ := stage.Validate(s.Stage, stage.Finalize, true); !ok {
		return nil, ErrNotInPreview
	}

	sections := sectionsStringMap(s)
	published := false
	if ds.publisher != nil {
		if err := ds.publisher.PublishEvent(ctx, events.NewEtpFinalized(s.Id, sections)); err != nil {
			ds.logger.Warn("document", "failed to publish finalize event", map[string]interface{}{
				"session_id": s.Id,
				"error":      err.Error(),
			})
		} else {
			published = true
		}
	}

	s.Stage = stage.Finalize
	ds.persist(ctx, sessionId, s, sections)

	return &dto.FinalizeResponse{
		SessionId: sessionId,
		Stage:     string(s.Stage),
		Published: published,
	}, nil
}

func (ds *documentService) loadState(ctx context.Context, sessionId uuid.UUID) (*flow.Session, error) {
	if s, ok := ds.sessionRepo.Get(sessionId.String()); ok {
		return s, nil
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	e, err := uow.EtpSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if e == nil || e.State == nil {
		return nil, ErrSessionNotFound
	}

	s := e.State
	s.Id = sessionId.String()
	ds.sessionRepo.Save(s)
	return s, nil
}

func (ds *documentService) persist(ctx context.Context, sessionId uuid.UUID, s *flow.Session, sections map[string]string) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)
	repo := uow.EtpSessionRepository()

	e, err := repo.FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil || e == nil {
		ds.logger.Error("document", "failed to load session for persist", map[string]interface{}{
			"session_id": sessionId.String(),
		})
		return
	}

	e.Stage = string(s.Stage)
	e.State = s
	e.Parts = sections
	if err := repo.Update(ctx, e); err != nil {
		ds.logger.Error("document", "failed to persist finalized session", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		return
	}
	ds.sessionRepo.Save(s)
}
