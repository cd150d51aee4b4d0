package controller

import (
	"review-rag-be/internal/dto"
	"review-rag-be/internal/pkg/serverutils"
	"review-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReviewController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
	Sweep(ctx *fiber.Ctx) error
}

type reviewController struct {
	reviewService  service.IReviewService
	indexerService service.IIndexerService
}

func NewReviewController(reviewService service.IReviewService, indexerService service.IIndexerService) IReviewController {
	return &reviewController{
		reviewService:  reviewService,
		indexerService: indexerService,
	}
}

func (c *reviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/review/v1")
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Post("sweep", c.Sweep)
	h.Get(":id", c.Show)
	h.Post(":id/reindex", c.Reindex)
}

func (c *reviewController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateReviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reviewService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create review", res))
}

func (c *reviewController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid review id")
	}

	res, err := c.reviewService.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show review", res))
}

func (c *reviewController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.reviewService.List(
		ctx.UserContext(),
		ctx.Query("productSku"),
		ctx.QueryInt("limit", 20),
		ctx.QueryInt("offset", 0),
	)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all review", res))
}

func (c *reviewController) Reindex(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid review id")
	}

	res, err := c.indexerService.Reindex(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reindex review", res))
}

func (c *reviewController) Sweep(ctx *fiber.Ctx) error {
	res, err := c.indexerService.Sweep(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success sweep unindexed reviews", res))
}
