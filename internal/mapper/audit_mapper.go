package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"notable-be/internal/entity"
	"notable-be/internal/model"
)

type AuditMapper struct{}

func NewAuditMapper() *AuditMapper {
	return &AuditMapper{}
}

func (m *AuditMapper) ToEntity(a *model.AuditLog) *entity.AuditLog {
	if a == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(a.Metadata) > 0 {
		// Unreadable metadata is dropped, never fatal.
		_ = json.Unmarshal(a.Metadata, &metadata)
	}

	return &entity.AuditLog{
		Id:           a.Id,
		UserId:       a.UserId,
		Action:       entity.AuditAction(a.Action),
		ResourceType: a.ResourceType,
		ResourceId:   a.ResourceId,
		IpAddress:    a.IpAddress,
		UserAgent:    a.UserAgent,
		Metadata:     metadata,
		CreatedAt:    a.CreatedAt,
	}
}

func (m *AuditMapper) ToModel(a *entity.AuditLog) *model.AuditLog {
	if a == nil {
		return nil
	}

	var metadata datatypes.JSON
	if a.Metadata != nil {
		if raw, err := json.Marshal(a.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.AuditLog{
		Id:           a.Id,
		UserId:       a.UserId,
		Action:       string(a.Action),
		ResourceType: a.ResourceType,
		ResourceId:   a.ResourceId,
		IpAddress:    a.IpAddress,
		UserAgent:    a.UserAgent,
		Metadata:     metadata,
		CreatedAt:    a.CreatedAt,
	}
}

func (m *AuditMapper) ToEntities(logs []*model.AuditLog) []*entity.AuditLog {
	entities := make([]*entity.AuditLog, len(logs))
	for i, a := range logs {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
