package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLog struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       *uuid.UUID     `gorm:"type:uuid;index"`
	Action       string         `gorm:"type:varchar(50);not null;index"`
	ResourceType string         `gorm:"type:varchar(50)"`
	ResourceId   string         `gorm:"type:varchar(255)"`
	IpAddress    string         `gorm:"type:varchar(45)"`
	UserAgent    string         `gorm:"type:text"`
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
