package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"notable-be/internal/dto"
	"notable-be/internal/entity"
	"notable-be/internal/pkg/apperror"
	"notable-be/internal/pkg/logger"
	"notable-be/internal/repository/specification"
	"notable-be/internal/repository/unitofwork"
	"notable-be/pkg/blob"

	"github.com/google/uuid"
)

// IBlobService manages externally stored binary assets and their ownership
// rows. Delete verifies ownership; DeleteUnchecked is the pre-authorized
// path for callers that already established ownership through the
// containing note. The two are separate methods so the trust boundary is
// visible in every call site.
type IBlobService interface {
	Upload(ctx context.Context, userId uuid.UUID, filename string, data []byte, contentType string) (*dto.UploadResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, urls []string) (int, error)
	DeleteUnchecked(ctx context.Context, urls []string) error
	ListOwned(ctx context.Context, userId uuid.UUID) ([]*entity.BlobMetadata, error)
}

type blobService struct {
	store      blob.ObjectStore
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewBlobService(store blob.ObjectStore, uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) IBlobService {
	return &blobService{
		store:      store,
		uowFactory: uowFactory,
		logger:     logger,
	}
}

func (s *blobService) Upload(ctx context.Context, userId uuid.UUID, filename string, data []byte, contentType string) (*dto.UploadResponse, error) {
	pathname := fmt.Sprintf("uploads/%s/%s", userId, path.Base(filename))

	url, err := s.store.Put(ctx, pathname, data, contentType, true)
	if err != nil {
		return nil, apperror.Storage("Failed to store file", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	record := &entity.BlobMetadata{
		Id:        uuid.New(),
		Url:       url,
		UserId:    userId,
		Filename:  path.Base(filename),
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}
	if err := uow.BlobMetadataRepository().Create(ctx, record); err != nil {
		// The object is stored but untracked; reclaim it so it cannot leak.
		if cleanupErr := s.store.Delete(ctx, []string{url}); cleanupErr != nil {
			s.logger.Warn("blob", "Failed to reclaim untracked object", map[string]interface{}{
				"url":   url,
				"error": cleanupErr.Error(),
			})
		}
		return nil, apperror.Storage("Failed to record file ownership", err)
	}

	return &dto.UploadResponse{Url: url}, nil
}

func (s *blobService) Delete(ctx context.Context, userId uuid.UUID, urls []string) (int, error) {
	if len(urls) == 0 {
		return 0, apperror.Validation("No file URLs provided")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	owned, err := uow.BlobMetadataRepository().FindAll(ctx,
		specification.ByURLs{URLs: urls},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return 0, apperror.Storage("Failed to look up file ownership", err)
	}
	if len(owned) == 0 {
		return 0, apperror.Permission("You do not have permission to delete these files")
	}

	// Unowned entries in the request are skipped silently; only the owned
	// subset is deleted.
	ownedUrls := make([]string, 0, len(owned))
	for _, record := range owned {
		ownedUrls = append(ownedUrls, record.Url)
	}

	if err := s.store.Delete(ctx, ownedUrls); err != nil {
		return 0, apperror.Storage("Failed to delete files from storage", err)
	}
	if err := uow.BlobMetadataRepository().DeleteByURLsOwnedBy(ctx, userId, ownedUrls); err != nil {
		return 0, apperror.Storage("Failed to delete file records", err)
	}

	return len(ownedUrls), nil
}

func (s *blobService) DeleteUnchecked(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	if err := s.store.Delete(ctx, urls); err != nil {
		return apperror.Storage("Failed to delete files from storage", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.BlobMetadataRepository().DeleteByURLs(ctx, urls); err != nil {
		return apperror.Storage("Failed to delete file records", err)
	}
	return nil
}

func (s *blobService) ListOwned(ctx context.Context, userId uuid.UUID) ([]*entity.BlobMetadata, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.BlobMetadataRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}
