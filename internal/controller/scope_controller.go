package controller

import (
	"doc-assistant-gw/internal/dto"
	"doc-assistant-gw/internal/pkg/serverutils"
	"doc-assistant-gw/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IScopeController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	Toggle(ctx *fiber.Ctx) error
	Remove(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type scopeController struct {
	service service.IAssistantService
}

func NewScopeController(service service.IAssistantService) IScopeController {
	return &scopeController{service: service}
}

func (c *scopeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/scope/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Get)
	h.Post("/toggle", c.Toggle)
	h.Delete("/:id", c.Remove)
	h.Delete("", c.Clear)
}

func (c *scopeController) Get(ctx *fiber.Ctx) error {
	res := c.service.GetScope(sessionContext(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success get scope", res))
}

func (c *scopeController) Toggle(ctx *fiber.Ctx) error {
	var req dto.ToggleScopeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ToggleScope(sessionContext(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Scope toggled", res))
}

func (c *scopeController) Remove(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	c.service.RemoveScopeDocument(sessionContext(ctx), id)
	return ctx.JSON(serverutils.SuccessResponse[any]("Document removed from scope", nil))
}

func (c *scopeController) Clear(ctx *fiber.Ctx) error {
	c.service.ClearScope(sessionContext(ctx))
	return ctx.JSON(serverutils.SuccessResponse[any]("Scope cleared", nil))
}
