package controller

import (
	"doc-assistant-gw/internal/dto"
	"doc-assistant-gw/internal/pkg/serverutils"
	"doc-assistant-gw/internal/service"
	"doc-assistant-gw/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	NewConversation(ctx *fiber.Ctx) error
	Conversations(ctx *fiber.Ctx) error
	SelectConversation(ctx *fiber.Ctx) error
	DeleteConversation(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IAssistantService
}

func NewChatController(service service.IAssistantService) IChatController {
	return &chatController{service: service}
}

// sessionContext rebuilds the caller identity the jwt middleware stashed in
// locals.
func sessionContext(ctx *fiber.Ctx) session.Context {
	sc := session.Context{}
	if userId, ok := ctx.Locals("user_id").(string); ok {
		sc.UserId = userId
	}
	if token, ok := ctx.Locals("token").(string); ok {
		sc.Token = token
	}
	return sc
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/query", c.Query)
	h.Post("/cancel", c.Cancel)
	h.Get("/state", c.State)
	h.Get("/history", c.History)
	h.Post("/new", c.NewConversation)
	h.Get("/conversations", c.Conversations)
	h.Post("/conversations/:id/select", c.SelectConversation)
	h.Delete("/conversations/:id", c.DeleteConversation)
	h.Post("/feedback", c.Feedback)
}

func (c *chatController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Query(ctx.Context(), sessionContext(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Query accepted", res))
}

func (c *chatController) Cancel(ctx *fiber.Ctx) error {
	c.service.CancelQuery(sessionContext(ctx))
	return ctx.JSON(serverutils.SuccessResponse[any]("Session canceled", nil))
}

func (c *chatController) State(ctx *fiber.Ctx) error {
	res := c.service.SessionState(sessionContext(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success get session state", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	res := c.service.History(sessionContext(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) NewConversation(ctx *fiber.Ctx) error {
	if err := c.service.NewConversation(sessionContext(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("New conversation started", nil))
}

func (c *chatController) Conversations(ctx *fiber.Ctx) error {
	res := c.service.Conversations(sessionContext(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success get conversations", res))
}

func (c *chatController) SelectConversation(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	res, err := c.service.SelectConversation(ctx.Context(), sessionContext(ctx), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Conversation selected", res))
}

func (c *chatController) DeleteConversation(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	c.service.DeleteConversation(sessionContext(ctx), id)
	return ctx.JSON(serverutils.SuccessResponse[any]("Conversation deleted", nil))
}

func (c *chatController) Feedback(ctx *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Feedback(ctx.Context(), sessionContext(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Feedback recorded", res))
}
