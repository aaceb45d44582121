package entity

import (
	"time"

	"github.com/google/uuid"
)

// BlobMetadata is the ownership row for an uploaded object. A blob's
// lifecycle is independent of any single note; the row exists until the
// object is explicitly deleted.
type BlobMetadata struct {
	Id        uuid.UUID
	Url       string
	UserId    uuid.UUID
	Filename  string
	Size      int64
	CreatedAt time.Time
}
