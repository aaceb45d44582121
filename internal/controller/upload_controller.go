package controller

import (
	"io"

	"notable-be/internal/dto"
	"notable-be/internal/entity"
	"notable-be/internal/pkg/apperror"
	"notable-be/internal/pkg/serverutils"
	"notable-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type uploadController struct {
	blobService    service.IBlobService
	auditPublisher service.IAuditPublisher
	maxUploadBytes int
	allowedMimes   map[string]struct{}
}

func NewUploadController(
	blobService service.IBlobService,
	auditPublisher service.IAuditPublisher,
	maxUploadBytes int,
	allowedMimeTypes []string,
) IUploadController {
	allowed := make(map[string]struct{}, len(allowedMimeTypes))
	for _, m := range allowedMimeTypes {
		allowed[m] = struct{}{}
	}
	return &uploadController{
		blobService:    blobService,
		auditPublisher: auditPublisher,
		maxUploadBytes: maxUploadBytes,
		allowedMimes:   allowed,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/upload")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", serverutils.NewUploadRateLimiter().Handler(), c.Upload)
	h.Delete("", c.Delete)
}

func (c *uploadController) Upload(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperror.Validation("No file provided")
	}
	if fileHeader.Size > int64(c.maxUploadBytes) {
		return apperror.Validation("File exceeds the maximum upload size")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if _, ok := c.allowedMimes[contentType]; !ok {
		return apperror.Validation("File type is not allowed")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperror.Validation("Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, int64(c.maxUploadBytes)+1))
	if err != nil {
		return apperror.Validation("Failed to read uploaded file")
	}
	if len(data) > c.maxUploadBytes {
		return apperror.Validation("File exceeds the maximum upload size")
	}

	res, err := c.blobService.Upload(ctx.Context(), userId, fileHeader.Filename, data, contentType)
	if err != nil {
		return err
	}

	c.recordAudit(ctx, userId, entity.AuditActionUploadFile, res.Url, map[string]interface{}{
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
	})
	return ctx.JSON(res)
}

func (c *uploadController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.DeleteUploadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}

	urls := req.AllUrls()
	deleted, err := c.blobService.Delete(ctx.Context(), userId, urls)
	if err != nil {
		return err
	}

	c.recordAudit(ctx, userId, entity.AuditActionDeleteFile, "", map[string]interface{}{
		"requested": len(urls),
		"deleted":   deleted,
	})
	return ctx.JSON(dto.DeleteUploadResponse{Success: true, Deleted: deleted})
}

func (c *uploadController) recordAudit(ctx *fiber.Ctx, userId uuid.UUID, action entity.AuditAction, resourceId string, metadata map[string]interface{}) {
	c.auditPublisher.Record(ctx.Context(), dto.AuditEntry{
		UserId:       &userId,
		Action:       string(action),
		ResourceType: "file",
		ResourceId:   resourceId,
		IpAddress:    ctx.IP(),
		UserAgent:    ctx.Get("User-Agent"),
		Metadata:     metadata,
	})
}
