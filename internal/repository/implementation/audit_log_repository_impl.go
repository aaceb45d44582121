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

type AuditLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditMapper
}

func NewAuditLogRepository(db *gorm.DB) contract.AuditLogRepository {
	return &AuditLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditMapper(),
	}
}

func (r *AuditLogRepositoryImpl) Create(ctx context.Context, log *entity.AuditLog) error {
	m := r.mapper.ToModel(log)
	return r.db.WithContext(ctx).Create(m).Error
}

// AnonymizeByUserId nulls the user reference on a deleted account's entries
// so the trail survives account erasure without identifying the subject.
func (r *AuditLogRepositoryImpl) AnonymizeByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Where("user_id = ?", userId).
		Update("user_id", nil).Error
}

func (r *AuditLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditLog, error) {
	var models []*model.AuditLog
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
