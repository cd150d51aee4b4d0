package controller

import (
	"review-rag-be/internal/dto"
	"review-rag-be/internal/pkg/serverutils"
	"review-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Reply(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("reply", c.Reply)
}

// Reply answers 200 with a well-formed body whenever the request is valid,
// including when retrieval or generation failed.
func (c *chatController) Reply(ctx *fiber.Ctx) error {
	var req dto.ChatReplyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.Reply(ctx.UserContext(), &req)
	return ctx.JSON(serverutils.SuccessResponse("Success reply", res))
}
