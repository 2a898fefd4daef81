package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/internal/pkg/serverutils"
	"github.com/barnabasli/alexandria/internal/service"
)

type IOrganizationController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Memberships(ctx *fiber.Ctx) error
}

type organizationController struct {
	organizationService service.IOrganizationService
	membershipService   service.IMembershipService
}

func NewOrganizationController(
	organizationService service.IOrganizationService,
	membershipService service.IMembershipService,
) IOrganizationController {
	return &organizationController{
		organizationService: organizationService,
		membershipService:   membershipService,
	}
}

func (c *organizationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/organization/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Index)
	h.Get("memberships", c.Memberships)
	h.Get(":id", c.Show)
}

func (c *organizationController) Index(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.organizationService.GetMine(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get organizations", res))
}

func (c *organizationController) Show(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	organizationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid organization id")
	}

	res, err := c.organizationService.GetOne(ctx.Context(), userId, organizationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get organization", res))
}

func (c *organizationController) Memberships(ctx *fiber.Ctx) error {
	userId, err := authenticatedUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.membershipService.GetMemberships(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get memberships", res))
}

func authenticatedUser(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject")
	}
	return userId, nil
}
