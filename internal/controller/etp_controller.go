package controller

import (
	"errors"

	"etp-authoring-be/internal/dto"
	"etp-authoring-be/internal/pkg/serverutils"
	"etp-authoring-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IEtpController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ProcessMessage(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	Preview(ctx *fiber.Ctx) error
	Finalize(ctx *fiber.Ctx) error
	AddKbDocument(ctx *fiber.Ctx) error
}

type etpController struct {
	conversationService service.IConversationService
	documentService     service.IDocumentService
	kbService           service.IKbService
}

func NewEtpController(
	conversationService service.IConversationService,
	documentService service.IDocumentService,
	kbService service.IKbService,
) IEtpController {
	return &etpController{
		conversationService: conversationService,
		documentService:     documentService,
		kbService:           kbService,
	}
}

func (c *etpController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/etp/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("sessions", c.CreateSession)
	h.Post("process-message", c.ProcessMessage)
	h.Get("sessions/:id/messages", c.GetChatHistory)
	h.Get("sessions/:id/preview", c.Preview)
	h.Post("sessions/:id/finalize", c.Finalize)
	h.Post("kb/documents", c.AddKbDocument)
}

func (c *etpController) CreateSession(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	// title is optional, an empty body is fine
	var req dto.CreateSessionRequest
	_ = ctx.BodyParser(&req)

	res, err := c.conversationService.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Sessão criada", res))
}

func (c *etpController) ProcessMessage(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.ProcessMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "corpo da requisição inválido")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.conversationService.ProcessMessage(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Mensagem processada", res))
}

func (c *etpController) GetChatHistory(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id de sessão inválido")
	}

	res, err := c.conversationService.GetChatHistory(ctx.Context(), userId, sessionId)
	if err != nil {
		return mapDocumentError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Histórico da conversa", res))
}

func (c *etpController) Preview(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id de sessão inválido")
	}

	res, err := c.documentService.Preview(ctx.Context(), sessionId)
	if err != nil {
		return mapDocumentError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Pré-visualização do documento", res))
}

func (c *etpController) Finalize(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "id de sessão inválido")
	}

	res, err := c.documentService.Finalize(ctx.Context(), sessionId)
	if err != nil {
		return mapDocumentError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Documento finalizado", res))
}

func (c *etpController) AddKbDocument(ctx *fiber.Ctx) error {
	var req dto.AddKbDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "corpo da requisição inválido")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.kbService.AddDocument(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Documento enviado para indexação", res))
}

func currentUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func mapDocumentError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDocumentNotReady), errors.Is(err, service.ErrNotInPreview):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
