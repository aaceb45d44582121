package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Note struct {
	Id        uuid.UUID                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string                         `gorm:"type:varchar(200);not null"`
	Content   datatypes.JSON                 `gorm:"type:jsonb;not null;default:'[]'"`
	Tags      datatypes.JSONSlice[string]    `gorm:"type:jsonb;not null;default:'[]'"`
	UserId    uuid.UUID                      `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time                      `gorm:"autoCreateTime"`
	UpdatedAt time.Time                      `gorm:"autoUpdateTime"`
}

func (Note) TableName() string {
	return "notes"
}
