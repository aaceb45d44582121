package service

import (
	"context"
	"time"

	"notable-be/internal/dto"
	"notable-be/internal/entity"
	"notable-be/internal/pkg/apperror"
	"notable-be/internal/pkg/logger"
	"notable-be/internal/pkg/mailer"
	"notable-be/internal/repository/specification"
	"notable-be/internal/repository/unitofwork"
	"notable-be/pkg/blob"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IUserService interface {
	ExportData(ctx context.Context, userId uuid.UUID, ipAddress, userAgent string) (*dto.UserDataExport, error)
	DeleteAccount(ctx context.Context, userId uuid.UUID, req *dto.DeleteAccountRequest, ipAddress, userAgent string) error
	ListAuditLogs(ctx context.Context, userId uuid.UUID) ([]*dto.AuditLogResponse, error)
}

type userService struct {
	uowFactory     unitofwork.RepositoryFactory
	store          blob.ObjectStore
	emailService   mailer.IEmailService
	auditPublisher IAuditPublisher
	logger         logger.ILogger
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	store blob.ObjectStore,
	emailService mailer.IEmailService,
	auditPublisher IAuditPublisher,
	logger logger.ILogger,
) IUserService {
	return &userService{
		uowFactory:     uowFactory,
		store:          store,
		emailService:   emailService,
		auditPublisher: auditPublisher,
		logger:         logger,
	}
}

func (s *userService) ExportData(ctx context.Context, userId uuid.UUID, ipAddress, userAgent string) (*dto.UserDataExport, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Internal("Failed to load account", err)
	}
	if user == nil {
		return nil, apperror.NotFound("Account not found")
	}

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal("Failed to load notes", err)
	}

	blobs, err := uow.BlobMetadataRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal("Failed to load files", err)
	}

	trail, err := uow.AuditLogRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal("Failed to load audit trail", err)
	}

	export := &dto.UserDataExport{
		ExportedAt: time.Now(),
		User: dto.UserResponse{
			Id:        user.Id,
			Email:     user.Email,
			FullName:  user.FullName,
			CreatedAt: user.CreatedAt,
		},
		Notes:      make([]*dto.NoteResponse, 0, len(notes)),
		Files:      make([]dto.ExportedFile, 0, len(blobs)),
		AuditTrail: make([]*dto.AuditLogResponse, 0, len(trail)),
	}
	for _, note := range notes {
		export.Notes = append(export.Notes, toNoteResponse(note))
	}
	for _, record := range blobs {
		export.Files = append(export.Files, dto.ExportedFile{
			Url:       record.Url,
			Filename:  record.Filename,
			Size:      record.Size,
			CreatedAt: record.CreatedAt,
		})
	}
	for _, entry := range trail {
		export.AuditTrail = append(export.AuditTrail, toAuditLogResponse(entry))
	}

	s.auditPublisher.Record(ctx, dto.AuditEntry{
		UserId:       &userId,
		Action:       string(entity.AuditActionExportUserData),
		ResourceType: "user",
		ResourceId:   userId.String(),
		IpAddress:    ipAddress,
		UserAgent:    userAgent,
	})

	return export, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID, req *dto.DeleteAccountRequest, ipAddress, userAgent string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return apperror.Internal("Failed to load account", err)
	}
	if user == nil {
		return apperror.NotFound("Account not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return apperror.Auth("Password confirmation failed")
	}

	blobs, err := uow.BlobMetadataRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return apperror.Internal("Failed to load files", err)
	}
	urls := make([]string, 0, len(blobs))
	for _, record := range blobs {
		urls = append(urls, record.Url)
	}

	if err := uow.Begin(ctx); err != nil {
		return apperror.Internal("Failed to start account deletion", err)
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return apperror.Internal("Failed to delete notes", err)
	}
	if len(urls) > 0 {
		if err := uow.BlobMetadataRepository().DeleteByURLsOwnedBy(ctx, userId, urls); err != nil {
			return apperror.Internal("Failed to delete file records", err)
		}
	}
	// Audit rows outlive the account, with the user reference removed.
	if err := uow.AuditLogRepository().AnonymizeByUserId(ctx, userId); err != nil {
		return apperror.Internal("Failed to anonymize audit trail", err)
	}
	if err := uow.UserRepository().Delete(ctx, userId); err != nil {
		return apperror.Internal("Failed to delete account", err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.Internal("Failed to commit account deletion", err)
	}

	// The account rows are gone; external storage cleanup is best effort.
	if len(urls) > 0 {
		go s.cleanupStoredObjects(urls)
	}

	if s.emailService != nil {
		if err := s.emailService.SendAccountDeleted(user.Email, user.FullName); err != nil {
			s.logger.Warn("user", "Failed to send account deletion email", map[string]interface{}{
				"email": user.Email,
				"error": err.Error(),
			})
		}
	}

	s.auditPublisher.Record(ctx, dto.AuditEntry{
		Action:       string(entity.AuditActionDeleteUserAccount),
		ResourceType: "user",
		ResourceId:   userId.String(),
		IpAddress:    ipAddress,
		UserAgent:    userAgent,
	})

	return nil
}

func (s *userService) ListAuditLogs(ctx context.Context, userId uuid.UUID) ([]*dto.AuditLogResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	entries, err := uow.AuditLogRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 100, Offset: 0},
	)
	if err != nil {
		return nil, apperror.Internal("Failed to load audit trail", err)
	}

	res := make([]*dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		res = append(res, toAuditLogResponse(entry))
	}
	return res, nil
}

func (s *userService) cleanupStoredObjects(urls []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.store.Delete(ctx, urls); err != nil {
		s.logger.Warn("user", "Failed to delete stored objects for removed account", map[string]interface{}{
			"count": len(urls),
			"error": err.Error(),
		})
	}
}

func toAuditLogResponse(entry *entity.AuditLog) *dto.AuditLogResponse {
	return &dto.AuditLogResponse{
		Id:           entry.Id,
		Action:       string(entry.Action),
		ResourceType: entry.ResourceType,
		ResourceId:   entry.ResourceId,
		IpAddress:    entry.IpAddress,
		Metadata:     entry.Metadata,
		CreatedAt:    entry.CreatedAt,
	}
}
