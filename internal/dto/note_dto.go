package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateNoteRequest leaves Content and Tags untyped beyond JSON: the block
// tree is opaque to the backend and validated only for size.
type CreateNoteRequest struct {
	Title   interface{}     `json:"title"`
	Content json.RawMessage `json:"content"`
	Tags    []interface{}   `json:"tags"`
}

// UpdateNoteRequest is a partial patch; nil fields are left untouched.
type UpdateNoteRequest struct {
	Id      uuid.UUID
	Title   interface{}     `json:"title"`
	Content json.RawMessage `json:"content"`
	Tags    []interface{}   `json:"tags"`
}

type NoteResponse struct {
	Id        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	Tags      []string        `json:"tags"`
	UserId    uuid.UUID       `json:"userId"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt *time.Time      `json:"updatedAt"`
}

type DeleteNoteResponse struct {
	Message string `json:"message"`
}
