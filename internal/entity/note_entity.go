package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Note's Content is the serialized block tree produced by the editor. The
// server treats it as opaque JSON apart from the blob-URL walk.
type Note struct {
	Id        uuid.UUID
	Title     string
	Content   json.RawMessage
	Tags      []string
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
}
