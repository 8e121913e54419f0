package controller

import (
	"errors"

	"bakery-support-be/internal/dto"
	"bakery-support-be/internal/pkg/serverutils"
	"bakery-support-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Init(ctx *fiber.Ctx) error
	Message(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
	Support(ctx *fiber.Ctx) error
	SearchProducts(ctx *fiber.Ctx) error
	FeedbackSummary(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("init", c.Init)
	h.Post("message", c.Message)
	h.Post("feedback", c.Feedback)
	h.Post("support", c.Support)
	h.Get("feedback/summary", c.FeedbackSummary)

	r.Post("/products/search", c.SearchProducts)
}

func (c *chatController) Init(ctx *fiber.Ctx) error {
	var req dto.InitChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := c.chatService.InitChat(ctx.Context(), req.UserID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Sesión de chat iniciada", res))
}

func (c *chatController) Message(ctx *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.HandleMessage(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Mensaje procesado", res))
}

func (c *chatController) Feedback(ctx *fiber.Ctx) error {
	var req dto.ChatFeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.RecordFeedback(ctx.Context(), &req); err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("¡Gracias por tu retroalimentación!", nil))
}

func (c *chatController) Support(ctx *fiber.Ctx) error {
	var req dto.ChatSupportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.RequestSupport(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *chatController) SearchProducts(ctx *fiber.Ctx) error {
	var req dto.ProductSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SearchProducts(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Búsqueda completada", res))
}

func (c *chatController) FeedbackSummary(ctx *fiber.Ctx) error {
	res, err := c.chatService.FeedbackSummary(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Resumen de retroalimentación", res))
}

// mapServiceError turns expected domain failures into client errors instead
// of opaque 500s.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrNoHistory):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
