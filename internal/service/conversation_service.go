package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"etp-authoring-be/internal/constant"
	"etp-authoring-be/internal/dto"
	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/pkg/logger"
	"etp-authoring-be/internal/repository/memory"
	"etp-authoring-be/internal/repository/specification"
	"etp-authoring-be/internal/repository/unitofwork"
	"etp-authoring-be/pkg/events"
	"etp-authoring-be/pkg/flow"
	"etp-authoring-be/pkg/flow/assembler"
	"etp-authoring-be/pkg/flow/command"
	"etp-authoring-be/pkg/flow/decision"
	"etp-authoring-be/pkg/flow/guard"
	"etp-authoring-be/pkg/flow/requirements"
	"etp-authoring-be/pkg/flow/stage"
	"etp-authoring-be/pkg/flow/textnorm"
	"etp-authoring-be/pkg/llm"
	"etp-authoring-be/pkg/retrieval"

	"github.com/google/uuid"
)

// IConversationService drives the guided authoring conversation.
type IConversationService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	ProcessMessage(ctx context.Context, userId uuid.UUID, req *dto.ProcessMessageRequest) (*dto.ProcessMessageResponse, error)
	GetChatHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]*dto.ChatHistoryItem, error)
}

type conversationService struct {
	uowFactory  unitofwork.RepositoryFactory
	sessionRepo *memory.SessionRepository
	llmProvider llm.LLMProvider
	retriever   retrieval.Retriever // optional, nil disables KB context
	publisher   IPublisherService
	logger      logger.ILogger
	genTimeout  time.Duration
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	sessionRepo *memory.SessionRepository,
	llmProvider llm.LLMProvider,
	retriever retrieval.Retriever,
	publisher IPublisherService,
	log logger.ILogger,
	generateTimeoutMs int,
) IConversationService {
	if generateTimeoutMs <= 0 {
		generateTimeoutMs = 8000
	}
	return &conversationService{
		uowFactory:  uowFactory,
		sessionRepo: sessionRepo,
		llmProvider: llmProvider,
		retriever:   retriever,
		publisher:   publisher,
		logger:      log,
		genTimeout:  time.Duration(generateTimeoutMs) * time.Millisecond,
	}
}

func (cs *conversationService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Estudo Técnico Preliminar"
	}

	id := uuid.New()
	state := flow.NewSession(id.String())

	e := &entity.EtpSession{
		Id:     id,
		UserId: userId,
		Title:  title,
		Stage:  string(state.Stage),
		State:  state,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.EtpSessionRepository().Create(ctx, e); err != nil {
		return nil, err
	}
	_ = uow.EtpMessageRepository().Create(ctx, &entity.EtpMessage{
		Id:           uuid.New(),
		EtpSessionId: id,
		Role:         "assistant",
		Content:      constant.MsgAskNecessity,
		Stage:        string(state.Stage),
	})

	cs.sessionRepo.Save(state)

	return &dto.CreateSessionResponse{
		SessionId:  id,
		AiResponse: constant.MsgAskNecessity,
		Stage:      string(state.Stage),
	}, nil
}

func (cs *conversationService) ProcessMessage(ctx context.Context, userId uuid.UUID, req *dto.ProcessMessageRequest) (*dto.ProcessMessageResponse, error) {
	sessionId := req.SessionId
	if sessionId == uuid.Nil {
		sessionId = uuid.New()
	}

	s, err := cs.loadOrCreate(ctx, userId, sessionId)
	if err != nil {
		cs.logger.Error("conversation", "failed to load session", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		return &dto.ProcessMessageResponse{Success: false, SessionId: sessionId, AiResponse: constant.MsgApologyGeneric}, nil
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return cs.response(false, sessionId, constant.MsgEmptyMessage, s), nil
	}

	reply := cs.advance(ctx, s, message)

	cs.persistTurn(ctx, userId, sessionId, s, message, reply)

	return cs.response(true, sessionId, reply, s), nil
}

func (cs *conversationService) GetChatHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]*dto.ChatHistoryItem, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	owned, err := cs.sessionOwnedBy(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrSessionNotFound
	}

	messages, err := uow.EtpMessageRepository().FindAll(ctx,
		specification.ByEtpSessionId{SessionId: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChatHistoryItem, len(messages))
	for i, m := range messages {
		items[i] = &dto.ChatHistoryItem{
			Role:      m.Role,
			Content:   m.Content,
			Stage:     m.Stage,
			CreatedAt: m.CreatedAt,
		}
	}
	return items, nil
}

func (cs *conversationService) sessionOwnedBy(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (bool, error) {
	e, err := uow.EtpSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.ByUserId{UserId: userId},
	)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

// loadOrCreate resolves the conversation state: memory cache first, then
// the database, and an unknown id starts a fresh session under that id.
func (cs *conversationService) loadOrCreate(ctx context.Context, userId, sessionId uuid.UUID) (*flow.Session, error) {
	idStr := sessionId.String()
	if s, ok := cs.sessionRepo.Get(idStr); ok {
		return s, nil
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	repo := uow.EtpSessionRepository()

	e, err := repo.FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if e == nil {
		s := flow.NewSession(idStr)
		e = &entity.EtpSession{
			Id:     sessionId,
			UserId: userId,
			Title:  "Estudo Técnico Preliminar",
			Stage:  string(s.Stage),
			State:  s,
		}
		if err := repo.Create(ctx, e); err != nil {
			return nil, err
		}
		cs.sessionRepo.Save(s)
		return s, nil
	}

	s := e.State
	if s == nil {
		s = flow.NewSession(idStr)
	}
	s.Id = idStr
	cs.sessionRepo.Save(s)
	return s, nil
}

func (cs *conversationService) persistTurn(ctx context.Context, userId, sessionId uuid.UUID, s *flow.Session, userMessage, reply string) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		cs.logger.Error("conversation", "failed to begin transaction", map[string]interface{}{"error": err.Error()})
		return
	}
	defer func() { _ = uow.Rollback() }()

	repo := uow.EtpSessionRepository()
	e, err := repo.FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		cs.logger.Error("conversation", "failed to load session for persist", map[string]interface{}{"error": err.Error()})
		return
	}
	if e == nil {
		e = &entity.EtpSession{Id: sessionId, UserId: userId, Title: "Estudo Técnico Preliminar"}
	}

	e.Stage = string(s.Stage)
	e.State = s
	if s.Stage == stage.GenerateDocument || s.Stage == stage.Preview || s.Stage == stage.Finalize {
		e.Parts = sectionsStringMap(s)
	}

	if err := repo.Update(ctx, e); err != nil {
		cs.logger.Error("conversation", "failed to persist session", map[string]interface{}{"error": err.Error()})
		return
	}

	msgRepo := uow.EtpMessageRepository()
	_ = msgRepo.Create(ctx, &entity.EtpMessage{
		Id: uuid.New(), EtpSessionId: sessionId, Role: "user", Content: userMessage, Stage: e.Stage,
	})
	_ = msgRepo.Create(ctx, &entity.EtpMessage{
		Id: uuid.New(), EtpSessionId: sessionId, Role: "assistant", Content: reply, Stage: e.Stage,
	})

	if err := uow.Commit(); err != nil {
		cs.logger.Error("conversation", "failed to commit turn", map[string]interface{}{"error": err.Error()})
		return
	}

	cs.sessionRepo.Save(s)
}

func (cs *conversationService) response(success bool, sessionId uuid.UUID, reply string, s *flow.Session) *dto.ProcessMessageResponse {
	resp := &dto.ProcessMessageResponse{
		Success:    success,
		SessionId:  sessionId,
		AiResponse: reply,
		Stage:      string(s.Stage),
		Topic:      s.Topic,
		Pending:    s.HasPendingDecision(),
	}
	if s.Stage == stage.SuggestRequirements || s.Stage == stage.RefineRequirements {
		resp.Requirements = s.RequirementTexts()
	}
	return resp
}

// advance runs one conversation turn. The pending decision, when present,
// always gets the first shot at the message.
func (cs *conversationService) advance(ctx context.Context, s *flow.Session, message string) string {
	if s.HasPendingDecision() {
		if reply, handled := cs.resolveDecision(ctx, s, message); handled {
			return reply
		}
	}

	switch s.Stage {
	case stage.CollectNeed:
		return cs.handleNecessity(ctx, s, message)
	case stage.SuggestRequirements, stage.RefineRequirements:
		return cs.handleRefinement(ctx, s, message)
	case stage.ConfirmRequirements:
		return cs.handleAnswers(ctx, s, message)
	case stage.GenerateDocument, stage.Preview:
		return cs.handlePreview(ctx, s, message)
	case stage.Finalize:
		return "Este estudo já foi finalizado. Inicie uma nova sessão para outro documento."
	default:
		return constant.MsgApologyGeneric
	}
}

func (cs *conversationService) resolveDecision(ctx context.Context, s *flow.Session, message string) (string, bool) {
	pd := *s.PendingDecision
	outcome, handled := decision.Consume(s, message)
	if !handled {
		return "", false
	}

	switch outcome {
	case decision.OutcomeAccept:
		cs.applyProposal(s, pd)
		return "Registrado. " + cs.advanceTopic(ctx, s), true
	case decision.OutcomeDefer:
		cs.deferProposal(s)
		return "Deixei esse ponto como pendente. " + cs.advanceTopic(ctx, s), true
	case decision.OutcomeDiscuss:
		// the slot stays cleared: the next message goes back to the
		// topic interpreter, so a real answer is recorded normally
		explanation := "Claro. Essa sugestão existe para não travar o andamento do estudo: o ponto fica registrado de forma explícita no documento e pode ser completado depois, antes da assinatura. Nada é perdido ao aceitar."
		return explanation + "\n\nProposta em aberto: " + pd.Proposal +
			"\nPode responder com a informação real, ou dizer \"pendente\" para registrar assim e seguir.", true
	default:
		// slot stays occupied, re-present the numbered choices
		return decision.Prompt(s.PendingDecision), true
	}
}

// applyProposal records the accepted proposal onto the current topic.
func (cs *conversationService) applyProposal(s *flow.Session, pd flow.PendingDecision) {
	switch s.Topic {
	case command.TopicStrategies:
		s.Answers.StrategyChoice = pd.Proposal
	case command.TopicPCA:
		s.Answers.PCA = &flow.PCAAnswer{Status: "pendente"}
	case command.TopicLegalBasis:
		s.Answers.LegalBasis = &flow.LegalBasisAnswer{Text: pd.Proposal}
	case command.TopicQtyValue:
		s.Answers.ValueMethodology = "pendente de definição; a estimativa será consolidada antes da assinatura"
	case command.TopicPriceResearch:
		if s.Answers.PriceResearch == nil {
			s.Answers.PriceResearch = &flow.PriceResearchAnswer{}
		}
		s.Answers.PriceResearch.Method = "pendente"
	case command.TopicInstallment:
		s.Answers.Installment = &flow.InstallmentAnswer{Decision: "pendente"}
	}
}

// deferProposal marks the current topic as pending without adopting the proposal.
func (cs *conversationService) deferProposal(s *flow.Session) {
	switch s.Topic {
	case command.TopicStrategies:
		s.Answers.StrategyChoice = "Pendente"
	case command.TopicPCA:
		s.Answers.PCA = &flow.PCAAnswer{Status: "pendente"}
	case command.TopicLegalBasis:
		s.Answers.LegalBasis = &flow.LegalBasisAnswer{Text: "Pendente"}
	case command.TopicQtyValue:
		s.Answers.ValueMethodology = "pendente de definição; a estimativa será consolidada antes da assinatura"
	case command.TopicPriceResearch:
		if s.Answers.PriceResearch == nil {
			s.Answers.PriceResearch = &flow.PriceResearchAnswer{}
		}
		s.Answers.PriceResearch.Method = "pendente"
	case command.TopicInstallment:
		s.Answers.Installment = &flow.InstallmentAnswer{Decision: "pendente"}
	}
}

func (cs *conversationService) handleNecessity(ctx context.Context, s *flow.Session, message string) string {
	if len([]rune(message)) < 10 {
		return "Pode detalhar um pouco mais a necessidade? Quanto mais contexto você der, melhores serão os requisitos sugeridos."
	}

	s.Necessity = message

	if ok, reason := stage.Validate(s.Stage, stage.SuggestRequirements, true); !ok {
		return reason
	}
	s.Stage = stage.SuggestRequirements

	reply := cs.suggestRequirements(ctx, s)
	s.Stage = stage.NextAfterSuggestion(s.Stage)
	return reply
}

func (cs *conversationService) handleRefinement(ctx context.Context, s *flow.Session, message string) string {
	if s.Stage == stage.SuggestRequirements {
		s.Stage = stage.NextAfterSuggestion(s.Stage)
	}

	// "pode gerar o documento" this early is a stage-gate refusal, not a
	// silent confirmation of the requirement list.
	normalized := textnorm.Normalize(message)
	if command.IsGenerateConfirmation(message) &&
		(strings.Contains(normalized, "documento") || strings.Contains(normalized, "etp")) {
		_, reason := stage.CanGenerate(s.Stage, true)
		return reason
	}

	cmd := command.Parse(message, len(s.Requirements))
	switch cmd.Type {
	case command.TypeConfirm, command.TypeAcceptAll:
		if ok, reason := stage.Validate(s.Stage, stage.ConfirmRequirements, true); !ok {
			return reason
		}
		s.Stage = stage.ConfirmRequirements
		s.RequirementsLocked = true
		s.Topic = command.TopicOrder[0]
		return constant.MsgRequirementsConfirmed + "\n\n" + cs.presentStrategies(ctx, s)

	case command.TypeRestartNecessity:
		if strings.TrimSpace(cmd.Payload) == "" {
			return "Entendido. Qual é a nova necessidade? Pode informar no formato \"nova necessidade: ...\"."
		}
		s.Necessity = cmd.Payload
		return "Necessidade atualizada.\n\n" + cs.suggestRequirements(ctx, s)

	case command.TypeRegenerateAll:
		return cs.suggestRequirements(ctx, s)

	case command.TypeRemove, command.TypeKeepOnly, command.TypeEdit, command.TypeReplace, command.TypeAppend:
		s.Requirements = requirements.Apply(cmd, s.Requirements)
		return cmd.Message + ".\n\n" + renderRequirements(s.Requirements) + "\n\n" + constant.MsgRefineHint

	default:
		return cmd.Message
	}
}

func (cs *conversationService) handleAnswers(ctx context.Context, s *flow.Session, message string) string {
	if s.Topic == "" {
		s.Topic = command.TopicOrder[0]
	}

	// Requirement edits after confirmation are refused, never applied.
	if s.RequirementsLocked {
		cmd := command.Parse(message, len(s.Requirements))
		switch cmd.Type {
		case command.TypeRemove, command.TypeKeepOnly, command.TypeEdit,
			command.TypeReplace, command.TypeAppend, command.TypeRegenerateAll:
			return "Os requisitos já foram confirmados e estão travados. Vamos seguir com as demais informações do estudo."
		}
	}

	// an explicit "pendente" works with or without an open decision slot
	if command.IsExplicitPending(message) {
		cs.deferProposal(s)
		return "Deixei esse ponto como pendente. " + cs.advanceTopic(ctx, s)
	}

	interp, ok := command.InterpreterFor(s.Topic)
	if !ok {
		s.Topic = command.TopicOrder[0]
		interp, _ = command.InterpreterFor(s.Topic)
	}

	intent := interp(message, command.Context{StrategyTitles: cs.strategyTitles(s)})
	return cs.applyIntent(ctx, s, intent, message)
}

func (cs *conversationService) applyIntent(ctx context.Context, s *flow.Session, intent command.Intent, message string) string {
	switch s.Topic {
	case command.TopicStrategies:
		return cs.applyStrategyIntent(ctx, s, intent)
	case command.TopicPCA:
		return cs.applyPCAIntent(ctx, s, intent)
	case command.TopicLegalBasis:
		return cs.applyLegalIntent(ctx, s, intent, message)
	case command.TopicQtyValue:
		return cs.applyQtyValueIntent(ctx, s, intent)
	case command.TopicPriceResearch:
		return cs.applyPriceIntent(ctx, s, intent, message)
	case command.TopicInstallment:
		return cs.applyInstallmentIntent(ctx, s, intent)
	case command.TopicSummary:
		return cs.applySummaryIntent(s, intent)
	default:
		return intent.Message
	}
}

func (cs *conversationService) applyStrategyIntent(ctx context.Context, s *flow.Session, intent command.Intent) string {
	switch intent.Name {
	case command.IntentStrategySelect:
		idx, _ := intent.Payload["index"].(int)
		if idx < 1 || idx > len(s.Answers.Strategies) {
			return intent.Message
		}
		chosen := s.Answers.Strategies[idx-1]
		s.Answers.StrategyChoice = strategyRecommendation(chosen)
		return fmt.Sprintf("Estratégia registrada: %s.\n\n%s", chosen.Title, cs.advanceTopic(ctx, s))

	case command.IntentStrategyMore:
		if len(s.Answers.Strategies) == 0 {
			return cs.presentStrategies(ctx, s)
		}
		rec := strategyRecommendation(s.Answers.Strategies[0])
		return decision.Ask(s,
			"Posso recomendar a estratégia mais aderente ao contexto informado.",
			rec, s.Stage)

	default:
		return intent.Message
	}
}

func (cs *conversationService) applyPCAIntent(ctx context.Context, s *flow.Session, intent command.Intent) string {
	switch intent.Name {
	case command.IntentPCAYes:
		s.Answers.PCA = &flow.PCAAnswer{Status: "sim"}
		return "Previsão no PCA registrada.\n\n" + cs.advanceTopic(ctx, s)
	case command.IntentPCADetails:
		raw, _ := intent.Payload["raw"].(string)
		s.Answers.PCA = &flow.PCAAnswer{Status: "sim", Detail: raw}
		return "Detalhes do PCA registrados.\n\n" + cs.advanceTopic(ctx, s)
	case command.IntentPCANo:
		s.Answers.PCA = &flow.PCAAnswer{Status: "nao"}
		return "Registrado: a contratação não consta do PCA vigente.\n\n" + cs.advanceTopic(ctx, s)
	case command.IntentPCAUnknown:
		return decision.Ask(s,
			"Sem problema não ter essa informação agora.",
			"Registrar a previsão no PCA como 'Pendente' e seguir.", s.Stage)
	case command.IntentProceed:
		s.Answers.PCA = &flow.PCAAnswer{Status: "nao_informado"}
		return "Certo, seguimos sem essa informação.\n\n" + cs.advanceTopic(ctx, s)
	default:
		return intent.Message
	}
}

func (cs *conversationService) applyLegalIntent(ctx context.Context, s *flow.Session, intent command.Intent, message string) string {
	switch intent.Name {
	case command.IntentLegalBasisSet:
		text, _ := intent.Payload["text"].(string)
		if s.Answers.LegalBasis == nil {
			s.Answers.LegalBasis = &flow.LegalBasisAnswer{}
		}
		s.Answers.LegalBasis.Text = text
		return "Base legal registrada.\n\n" + cs.advanceTopic(ctx, s)

	case command.IntentLegalBasisNotes:
		text, _ := intent.Payload["text"].(string)
		if s.Answers.LegalBasis == nil {
			s.Answers.LegalBasis = &flow.LegalBasisAnswer{}
		}
		s.Answers.LegalBasis.Notes = append(s.Answers.LegalBasis.Notes, text)
		return "Observação registrada. Pode citar a norma principal, ou dizer 'seguir' para avançarmos."

	case command.IntentFinalizePhase:
		s.Answers.LegalBasis = guard.EnsureLegal(s.Answers.LegalBasis)
		return "Base legal concluída.\n\n" + cs.advanceTopic(ctx, s)

	default:
		if command.IsUncertain(message) {
			return decision.Ask(s,
				"Posso sugerir a base legal padrão para contratações públicas.",
				cs.suggestLegalNorm(ctx, s), s.Stage)
		}
		return intent.Message
	}
}

// suggestLegalNorm asks the generator for applicable statutes; anything
// short of a usable reference degrades to the default statute.
func (cs *conversationService) suggestLegalNorm(ctx context.Context, s *flow.Session) string {
	prompt := constant.PromptLegalNorms + "\n\nNecessidade: " + s.Necessity
	prompt = cs.withKbContext(ctx, s.Necessity, prompt)

	var payload struct {
		Norms []struct {
			Ref    string `json:"ref"`
			Aplica string `json:"aplica"`
		} `json:"norms"`
	}
	if err := cs.generateJSON(ctx, prompt, &payload); err != nil {
		cs.logger.Warn("conversation", "legal norm generation failed, using fallback", map[string]interface{}{
			"session_id": s.Id,
			"error":      err.Error(),
		})
	}

	for _, n := range payload.Norms {
		ref := guard.Sanitize(strings.TrimSpace(n.Ref))
		if ref != "" {
			return ref
		}
	}
	return "Lei 14.133/2021 — Nova Lei de Licitações e Contratos Administrativos"
}

func (cs *conversationService) applyQtyValueIntent(ctx context.Context, s *flow.Session, intent command.Intent) string {
	switch intent.Name {
	case command.IntentQtyValueSet:
		qty, _ := intent.Payload["quantity"].(float64)
		unit, _ := intent.Payload["unit"].(string)
		value, _ := intent.Payload["value"].(float64)
		period, _ := intent.Payload["period"].(string)
		if unit == "" {
			unit = "itens"
		}
		if qty == 0 {
			qty = 1
		}
		s.Answers.QtyValue = append(s.Answers.QtyValue, flow.QtyValueItem{
			Description: unit,
			Quantity:    qty,
			UnitValue:   value,
		})
		switch period {
		case "ano":
			s.Answers.ValueMethodology = "Valores estimados por ano, conforme informado pelo demandante."
		case "mes":
			s.Answers.ValueMethodology = "Valores estimados por mês, conforme informado pelo demandante."
		}
		return "Estimativa de quantidades e valores registrada.\n\n" + cs.advanceTopic(ctx, s)

	case command.IntentQtyValueText:
		text, _ := intent.Payload["text"].(string)
		if strings.TrimSpace(s.Answers.ValueMethodology) == "" {
			s.Answers.ValueMethodology = text
		} else {
			s.Answers.ValueMethodology += "\n" + text
		}
		return "Descrição da estimativa registrada.\n\n" + cs.advanceTopic(ctx, s)

	case command.IntentMarkDone:
		return "Certo, seguimos sem a estimativa detalhada.\n\n" + cs.advanceTopic(ctx, s)

	case command.IntentQtyValueUnknown:
		return decision.Ask(s,
			"A estimativa de quantidades e valores pode ser completada depois.",
			"Registrar a estimativa de quantidades e valores como 'Pendente' e seguir.", s.Stage)

	default:
		return intent.Message
	}
}

func (cs *conversationService) applyPriceIntent(ctx context.Context, s *flow.Session, intent command.Intent, message string) string {
	ensure := func() *flow.PriceResearchAnswer {
		if s.Answers.PriceResearch == nil {
			s.Answers.PriceResearch = &flow.PriceResearchAnswer{}
		}
		return s.Answers.PriceResearch
	}

	switch intent.Name {
	case command.IntentSupplierCount:
		count, _ := intent.Payload["count"].(int)
		ensure().SupplierCount = count
		return "Quantidade de fornecedores registrada. Se tiver links de evidência, pode colar aqui; ou diga 'seguir'."

	case command.IntentLinkEvidence:
		urls, _ := intent.Payload["urls"].([]string)
		pr := ensure()
		pr.EvidenceLinks = append(pr.EvidenceLinks, urls...)
		return "Links de evidência registrados. Algo mais sobre a pesquisa de preços, ou podemos seguir?"

	case command.IntentMethodSelect:
		method, _ := intent.Payload["method"].(string)
		ensure().Method = method
		return "Método registrado. Se houver, informe quantos fornecedores foram consultados ou cole links de evidência; ou diga 'seguir'."

	case command.IntentMarkDone:
		if s.Answers.PriceResearch == nil {
			s.Answers.PriceResearch = &flow.PriceResearchAnswer{Method: "nao_informado"}
		}
		return "Pesquisa de preços concluída.\n\n" + cs.advanceTopic(ctx, s)

	default:
		if command.IsUncertain(message) {
			return decision.Ask(s,
				"A pesquisa de preços pode ser completada depois.",
				"Registrar a pesquisa de preços como 'Pendente' e seguir.", s.Stage)
		}
		return intent.Message
	}
}

func (cs *conversationService) applyInstallmentIntent(ctx context.Context, s *flow.Session, intent command.Intent) string {
	switch intent.Name {
	case command.IntentInstallmentYes:
		text, _ := intent.Payload["text"].(string)
		s.Answers.Installment = &flow.InstallmentAnswer{Decision: "sim", Text: text}
		return "Parcelamento registrado.\n\n" + cs.advanceTopic(ctx, s)
	case command.IntentInstallmentNo:
		s.Answers.Installment = &flow.InstallmentAnswer{Decision: "nao"}
		return "Contratação única registrada.\n\n" + cs.advanceTopic(ctx, s)
	case command.IntentInstallmentUnknown:
		return decision.Ask(s,
			"A decisão de parcelamento pode ficar em aberto por enquanto.",
			"Registrar o parcelamento como 'Pendente' e seguir.", s.Stage)
	default:
		return intent.Message
	}
}

func (cs *conversationService) applySummaryIntent(s *flow.Session, intent command.Intent) string {
	switch intent.Name {
	case command.IntentConfirmGenerate:
		return cs.generateDocument(s)

	case command.IntentRequestAdjustment:
		return "O que você gostaria de ajustar? Os requisitos já estão travados, mas as demais informações podem ser revistas antes de gerar o documento."

	case command.IntentFreeAnswer:
		text, _ := intent.Payload["text"].(string)
		if strings.TrimSpace(s.Answers.ExecutiveSummary) == "" {
			s.Answers.ExecutiveSummary = text
		} else {
			s.Answers.ExecutiveSummary += "\n" + text
		}
		return "Registrado no resumo. Diga \"pode gerar\" quando estiver pronto para montar o documento."

	default:
		return intent.Message
	}
}

func (cs *conversationService) generateDocument(s *flow.Session) string {
	if ok, reason := stage.CanGenerate(s.Stage, true); !ok {
		return reason
	}
	if ok, reason := stage.Validate(s.Stage, stage.GenerateDocument, true); !ok {
		return reason
	}
	s.Stage = stage.GenerateDocument

	sections := assembler.Assemble(assembler.FromSession(s))

	// assembly is synchronous, move straight to preview
	if ok, _ := stage.Validate(s.Stage, stage.Preview, true); ok {
		s.Stage = stage.Preview
	}

	return fmt.Sprintf("%s (%d seções preenchidas)", constant.MsgDocumentReady, len(sections))
}

func (cs *conversationService) handlePreview(ctx context.Context, s *flow.Session, message string) string {
	if s.Stage == stage.GenerateDocument {
		if ok, _ := stage.Validate(s.Stage, stage.Preview, true); ok {
			s.Stage = stage.Preview
		}
	}

	normalized := strings.ToLower(message)
	wantsFinalize := strings.Contains(normalized, "finalizar") || strings.Contains(normalized, "finaliza")

	if wantsFinalize || stage.IsUserConfirmed(message) {
		if ok, reason := stage.Validate(s.Stage, stage.Finalize, true); !ok {
			return reason
		}
		sections := sectionsStringMap(s)
		if cs.publisher != nil {
			if err := cs.publisher.PublishEvent(ctx, events.NewEtpFinalized(s.Id, sections)); err != nil {
				cs.logger.Warn("conversation", "failed to publish finalize event", map[string]interface{}{
					"session_id": s.Id,
					"error":      err.Error(),
				})
			}
		}
		s.Stage = stage.Finalize
		return constant.MsgFinalized
	}

	if strings.Contains(normalized, "ver") || strings.Contains(normalized, "mostrar") || strings.Contains(normalized, "preview") {
		return renderSections(s)
	}

	return constant.MsgDocumentReady + " Diga \"finalizar\" para concluir, ou \"mostrar\" para ver as seções aqui."
}

// suggestRequirements generates the requirement proposal and applies the
// payload floor; generator failures degrade to the deterministic template.
func (cs *conversationService) suggestRequirements(ctx context.Context, s *flow.Session) string {
	prompt := constant.PromptSuggestRequirements + "\n\nNecessidade: " + s.Necessity
	prompt = cs.withKbContext(ctx, s.Necessity, prompt)

	var payload guard.RequirementsPayload
	degraded := ""
	if err := cs.generateJSON(ctx, prompt, &payload); err != nil {
		cs.logger.Warn("conversation", "requirements generation failed, using fallback", map[string]interface{}{
			"session_id": s.Id,
			"error":      err.Error(),
		})
		degraded = "\n\n" + constant.MsgGeneratorSoft
	}
	payload = guard.EnsureRequirements(payload, s.Necessity)

	s.Requirements = requirements.FromTexts(payload.Items)
	s.RequirementsLocked = false

	return payload.Intro + "\n\n" + renderRequirements(s.Requirements) + "\n\n" + payload.Rationale + degraded + "\n\n" + constant.MsgRefineHint
}

func (cs *conversationService) presentStrategies(ctx context.Context, s *flow.Session) string {
	prompt := constant.PromptSolutionStrategies +
		"\n\nNecessidade: " + s.Necessity +
		"\nRequisitos aprovados:\n" + renderRequirements(s.Requirements)
	prompt = cs.withKbContext(ctx, s.Necessity, prompt)

	var payload guard.StrategiesPayload
	if err := cs.generateJSON(ctx, prompt, &payload); err != nil {
		cs.logger.Warn("conversation", "strategy generation failed, using fallback", map[string]interface{}{
			"session_id": s.Id,
			"error":      err.Error(),
		})
	}
	payload = guard.EnsureStrategies(payload, s.Necessity)
	s.Answers.Strategies = payload.Strategies

	var b strings.Builder
	b.WriteString(payload.Intro)
	b.WriteString("\n\n")
	for i, st := range payload.Strategies {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, st.Title))
		if st.WhenIndicated != "" {
			b.WriteString("   Quando indicada: " + st.WhenIndicated + "\n")
		}
		if len(st.Advantages) > 0 {
			b.WriteString("   Vantagens: " + strings.Join(st.Advantages, "; ") + "\n")
		}
		if len(st.Risks) > 0 {
			b.WriteString("   Riscos: " + strings.Join(st.Risks, "; ") + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(constant.MsgAskStrategies)
	return b.String()
}

func (cs *conversationService) presentSummary(ctx context.Context, s *flow.Session) string {
	prompt := constant.PromptSummary +
		"\n\nNecessidade: " + s.Necessity +
		"\nRequisitos:\n" + renderRequirements(s.Requirements) +
		"\nEstratégia escolhida: " + s.Answers.StrategyChoice

	var payload struct {
		ExecutiveSummary string `json:"executive_summary"`
	}
	if err := cs.generateJSON(ctx, prompt, &payload); err != nil {
		cs.logger.Warn("conversation", "summary generation failed, using fallback", map[string]interface{}{
			"session_id": s.Id,
			"error":      err.Error(),
		})
	}
	s.Answers.ExecutiveSummary = guard.EnsureSummary(guard.Sanitize(payload.ExecutiveSummary), s.Necessity)

	var b strings.Builder
	b.WriteString("Resumo consolidado do estudo:\n\n")
	b.WriteString("Necessidade: " + s.Necessity + "\n\n")
	b.WriteString(fmt.Sprintf("Requisitos confirmados (%d):\n%s\n\n", len(s.Requirements), renderRequirements(s.Requirements)))
	b.WriteString("Estratégia: " + orPending(s.Answers.StrategyChoice) + "\n")
	if pca := s.Answers.PCA; pca != nil {
		b.WriteString("PCA: " + pca.Status + "\n")
	}
	if lb := s.Answers.LegalBasis; lb != nil {
		b.WriteString("Base legal: " + lb.Text + "\n")
	}
	if items := s.Answers.QtyValue; len(items) > 0 {
		b.WriteString(fmt.Sprintf("Quantidades e valores: %d item(ns) estimado(s)\n", len(items)))
	} else if vm := s.Answers.ValueMethodology; vm != "" {
		b.WriteString("Quantidades e valores: " + vm + "\n")
	}
	if pr := s.Answers.PriceResearch; pr != nil && pr.Method != "" {
		b.WriteString("Pesquisa de preços: " + pr.Method)
		if pr.SupplierCount > 0 {
			b.WriteString(fmt.Sprintf(" (%d fornecedores)", pr.SupplierCount))
		}
		b.WriteString("\n")
	}
	if inst := s.Answers.Installment; inst != nil {
		b.WriteString("Parcelamento: " + inst.Decision + "\n")
	}
	b.WriteString("\nResumo executivo: " + s.Answers.ExecutiveSummary + "\n\n")
	b.WriteString(constant.MsgAskSummary)
	return b.String()
}

func (cs *conversationService) advanceTopic(ctx context.Context, s *flow.Session) string {
	idx := topicIndex(s.Topic)
	if idx < 0 || idx+1 >= len(command.TopicOrder) {
		s.Topic = command.TopicSummary
		return constant.MsgAskSummary
	}
	s.Topic = command.TopicOrder[idx+1]

	switch s.Topic {
	case command.TopicPCA:
		return constant.MsgAskPCA
	case command.TopicLegalBasis:
		return constant.MsgAskLegalBasis
	case command.TopicQtyValue:
		return constant.MsgAskQtyValue
	case command.TopicPriceResearch:
		return constant.MsgAskPriceSearch
	case command.TopicInstallment:
		return constant.MsgAskInstallment
	case command.TopicSummary:
		return cs.presentSummary(ctx, s)
	default:
		return constant.MsgAskSummary
	}
}

func (cs *conversationService) generateJSON(ctx context.Context, prompt string, out interface{}) error {
	genCtx, cancel := context.WithTimeout(ctx, cs.genTimeout)
	defer cancel()

	raw, err := cs.llmProvider.Generate(genCtx, prompt, llm.WithJSONMode())
	if err != nil {
		return err
	}
	raw = extractJSONObject(raw)
	if raw == "" {
		return fmt.Errorf("generation returned no JSON object")
	}
	return json.Unmarshal([]byte(raw), out)
}

func (cs *conversationService) withKbContext(ctx context.Context, query, prompt string) string {
	if cs.retriever == nil {
		return prompt
	}
	snippets, err := cs.retriever.Retrieve(ctx, query, 4)
	if err != nil {
		cs.logger.Warn("conversation", "kb retrieval failed", map[string]interface{}{"error": err.Error()})
		return prompt
	}
	block := retrieval.ContextBlock(snippets)
	if block == "" {
		return prompt
	}
	return block + "\n" + prompt
}

func (cs *conversationService) strategyTitles(s *flow.Session) []string {
	titles := make([]string, len(s.Answers.Strategies))
	for i, st := range s.Answers.Strategies {
		titles[i] = st.Title
	}
	return titles
}

func strategyRecommendation(s flow.Strategy) string {
	if s.WhenIndicated == "" {
		return s.Title
	}
	return s.Title + ": " + s.WhenIndicated
}

func renderRequirements(list []flow.Requirement) string {
	lines := make([]string, len(list))
	for i, r := range list {
		lines[i] = fmt.Sprintf("%d. %s", i+1, r.Text)
	}
	return strings.Join(lines, "\n")
}

func renderSections(s *flow.Session) string {
	sections := assembler.Assemble(assembler.FromSession(s))
	var b strings.Builder
	for _, key := range assembler.Order() {
		content, ok := sections[key]
		if !ok {
			continue
		}
		b.WriteString("[" + string(key) + "]\n")
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func sectionsStringMap(s *flow.Session) map[string]string {
	out := map[string]string{}
	for k, v := range assembler.Assemble(assembler.FromSession(s)) {
		out[string(k)] = v
	}
	return out
}

func topicIndex(topic string) int {
	for i, t := range command.TopicOrder {
		if t == topic {
			return i
		}
	}
	return -1
}

func orPending(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Pendente"
	}
	return v
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
