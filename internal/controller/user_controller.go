package controller

import (
	"notable-be/internal/dto"
	"notable-be/internal/pkg/apperror"
	"notable-be/internal/pkg/serverutils"
	"notable-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	ExportData(ctx *fiber.Ctx) error
	DeleteAccount(ctx *fiber.Ctx) error
	AuditLogs(ctx *fiber.Ctx) error
}

type userController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) IUserController {
	return &userController{
		userService: userService,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/me")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/export", c.ExportData)
	h.Get("/audit-logs", c.AuditLogs)
	h.Delete("", c.DeleteAccount)
}

func (c *userController) ExportData(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.userService.ExportData(ctx.Context(), userId, ctx.IP(), ctx.Get("User-Agent"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="data-export.json"`)
	return ctx.JSON(res)
}

func (c *userController) DeleteAccount(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.DeleteAccountRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.userService.DeleteAccount(ctx.Context(), userId, &req, ctx.IP(), ctx.Get("User-Agent")); err != nil {
		return err
	}

	return ctx.JSON(dto.DeleteAccountResponse{Message: "Account deleted"})
}

func (c *userController) AuditLogs(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.userService.ListAuditLogs(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
