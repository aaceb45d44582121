package implementation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notable-be/internal/entity"
	"notable-be/internal/mapper"
	"notable-be/internal/model"
	"notable-be/internal/repository/contract"
	"notable-be/internal/repository/specification"
)

type BlobMetadataRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BlobMapper
}

func NewBlobMetadataRepository(db *gorm.DB) contract.BlobMetadataRepository {
	return &BlobMetadataRepositoryImpl{
		db:     db,
		mapper: mapper.NewBlobMapper(),
	}
}

func (r *BlobMetadataRepositoryImpl) Create(ctx context.Context, blob *entity.BlobMetadata) error {
	m := r.mapper.ToModel(blob)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*blob = *r.mapper.ToEntity(m)
	return nil
}

func (r *BlobMetadataRepositoryImpl) DeleteByURLs(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("url IN ?", urls).Delete(&model.BlobMetadata{}).Error
}

func (r *BlobMetadataRepositoryImpl) DeleteByURLsOwnedBy(ctx context.Context, userId uuid.UUID, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("url IN ? AND user_id = ?", urls, userId).
		Delete(&model.BlobMetadata{}).Error
}

func (r *BlobMetadataRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BlobMetadata, error) {
	var models []*model.BlobMetadata
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *BlobMetadataRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.BlobMetadata{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
