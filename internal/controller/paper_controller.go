package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/internal/dto"
	"github.com/barnabasli/alexandria/internal/pkg/serverutils"
	"github.com/barnabasli/alexandria/internal/service"
)

// Uploads above this size are rejected before parsing.
const maxUploadBytes = 50 * 1024 * 1024

type IPaperController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Index(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type paperController struct {
	paperService service.IPaperService
}

func NewPaperController(paperService service.IPaperService) IPaperController {
	return &paperController{
		paperService: paperService,
	}
}

func (c *paperController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/paper/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post(":organizationId", c.Upload)
	h.Get(":organizationId", c.Index)
	h.Get(":organizationId/stats", c.Stats)
	h.Delete(":organizationId/:id", c.Delete)
}

func (c *paperController) Upload(ctx *fiber.Ctx) error {
	userId, organizationId, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.UploadPaperRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing file")
	}
	if fileHeader.Size > maxUploadBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "File too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	res, err := c.paperService.Upload(ctx.Context(), userId, organizationId, &req, fileHeader.Filename, content, contentType)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success upload paper", res))
}

func (c *paperController) Index(ctx *fiber.Ctx) error {
	userId, organizationId, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := c.paperService.GetAll(ctx.Context(), userId, organizationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get papers", res))
}

func (c *paperController) Delete(ctx *fiber.Ctx) error {
	userId, organizationId, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	paperId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid paper id")
	}

	if err := c.paperService.Delete(ctx.Context(), userId, organizationId, paperId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete paper", nil))
}

func (c *paperController) Stats(ctx *fiber.Ctx) error {
	userId, organizationId, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := c.paperService.Stats(ctx.Context(), userId, organizationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get stats", res))
}

// requestIdentity extracts the authenticated user and the organization
// path parameter shared by every paper route.
func requestIdentity(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject")
	}

	organizationId, err := uuid.Parse(ctx.Params("organizationId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid organization id")
	}

	return userId, organizationId, nil
}
