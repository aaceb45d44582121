package unitofwork

import (
	"context"

	"notable-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	NoteRepository() contract.NoteRepository
	BlobMetadataRepository() contract.BlobMetadataRepository
	AuditLogRepository() contract.AuditLogRepository
}
