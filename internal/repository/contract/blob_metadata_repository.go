package contract

import (
	"context"

	"github.com/google/uuid"

	"notable-be/internal/entity"
	"notable-be/internal/repository/specification"
)

type BlobMetadataRepository interface {
	Create(ctx context.Context, blob *entity.BlobMetadata) error
	DeleteByURLs(ctx context.Context, urls []string) error
	DeleteByURLsOwnedBy(ctx context.Context, userId uuid.UUID, urls []string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BlobMetadata, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
