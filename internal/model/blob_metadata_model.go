package model

import (
	"time"

	"github.com/google/uuid"
)

type BlobMetadata struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Url       string    `gorm:"type:text;uniqueIndex;not null"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename  string    `gorm:"type:varchar(255);not null"`
	Size      int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (BlobMetadata) TableName() string {
	return "blob_metadata"
}
