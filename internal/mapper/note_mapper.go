package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"notable-be/internal/entity"
	"notable-be/internal/model"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.Note{
		Id:        n.Id,
		Title:     n.Title,
		Content:   json.RawMessage(n.Content),
		Tags:      []string(n.Tags),
		UserId:    n.UserId,
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	content := n.Content
	if len(content) == 0 {
		content = json.RawMessage("[]")
	}
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}

	return &model.Note{
		Id:        n.Id,
		Title:     n.Title,
		Content:   datatypes.JSON(content),
		Tags:      datatypes.NewJSONSlice(tags),
		UserId:    n.UserId,
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
