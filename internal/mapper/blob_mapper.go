package mapper

import (
	"notable-be/internal/entity"
	"notable-be/internal/model"
)

type BlobMapper struct{}

func NewBlobMapper() *BlobMapper {
	return &BlobMapper{}
}

func (m *BlobMapper) ToEntity(b *model.BlobMetadata) *entity.BlobMetadata {
	if b == nil {
		return nil
	}
	return &entity.BlobMetadata{
		Id:        b.Id,
		Url:       b.Url,
		UserId:    b.UserId,
		Filename:  b.Filename,
		Size:      b.Size,
		CreatedAt: b.CreatedAt,
	}
}

func (m *BlobMapper) ToModel(b *entity.BlobMetadata) *model.BlobMetadata {
	if b == nil {
		return nil
	}
	return &model.BlobMetadata{
		Id:        b.Id,
		Url:       b.Url,
		UserId:    b.UserId,
		Filename:  b.Filename,
		Size:      b.Size,
		CreatedAt: b.CreatedAt,
	}
}

func (m *BlobMapper) ToEntities(blobs []*model.BlobMetadata) []*entity.BlobMetadata {
	entities := make([]*entity.BlobMetadata, len(blobs))
	for i, b := range blobs {
		entities[i] = m.ToEntity(b)
	}
	return entities
}
