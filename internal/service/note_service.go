package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"notable-be/internal/dto"
	"notable-be/internal/entity"
	"notable-be/internal/pkg/apperror"
	"notable-be/internal/pkg/logger"
	"notable-be/internal/repository/specification"
	"notable-be/internal/repository/unitofwork"
	"notable-be/pkg/blob"
	"notable-be/pkg/events"
	pktNats "notable-be/pkg/nats"

	"github.com/google/uuid"
)

const (
	maxTitleLength  = 200
	maxContentBytes = 1 << 20
	maxTags         = 20
	maxTagLength    = 30
	notFoundMessage = "Note not found"
)

type INoteService interface {
	List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type noteService struct {
	uowFactory     unitofwork.RepositoryFactory
	blobService    IBlobService
	extractor      *blob.Extractor
	dispatcher     *events.Dispatcher
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	blobService IBlobService,
	extractor *blob.Extractor,
	dispatcher *events.Dispatcher,
	eventPublisher *pktNats.Publisher,
	logger logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:     uowFactory,
		blobService:    blobService,
		extractor:      extractor,
		dispatcher:     dispatcher,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// coerceTitle mirrors the loose typing of the request body: any scalar is
// stringified before validation, matching what a non-string JSON title
// becomes on the wire.
func coerceTitle(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func validateTitle(title string) error {
	if title == "" {
		return apperror.Validation("Title is required")
	}
	if len(title) > maxTitleLength {
		return apperror.Validation(fmt.Sprintf("Title must be %d characters or less", maxTitleLength))
	}
	return nil
}

func validateContent(content []byte) error {
	if len(content) > maxContentBytes {
		return apperror.Validation("Content exceeds maximum size of 1MB")
	}
	return nil
}

func validateTags(raw []interface{}) ([]string, error) {
	if len(raw) > maxTags {
		return nil, apperror.Validation(fmt.Sprintf("A note can have at most %d tags", maxTags))
	}
	tags := make([]string, 0, len(raw))
	for _, item := range raw {
		tag, ok := item.(string)
		if !ok {
			return nil, apperror.Validation("Tags must be strings")
		}
		if len(tag) > maxTagLength {
			return nil, apperror.Validation(fmt.Sprintf("Tags must be %d characters or less", maxTagLength))
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func toNoteResponse(note *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      note.Tags,
		UserId:    note.UserId,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func (s *noteService) List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal("Failed to list notes", err)
	}

	res := make([]*dto.NoteResponse, 0, len(notes))
	for _, note := range notes {
		res = append(res, toNoteResponse(note))
	}
	return res, nil
}

func (s *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperror.Internal("Failed to load note", err)
	}
	if note == nil {
		return nil, apperror.NotFound(notFoundMessage)
	}
	return toNoteResponse(note), nil
}

func (s *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	title := coerceTitle(req.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateContent(req.Content); err != nil {
		return nil, err
	}
	tags, err := validateTags(req.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	note := entity.Note{
		Id:        uuid.New(),
		Title:     title,
		Content:   req.Content,
		Tags:      tags,
		UserId:    userId,
		CreatedAt: now,
		UpdatedAt: &now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, apperror.Internal("Failed to create note", err)
	}

	s.publishNoteEvent(ctx, events.TypeNoteCreated, note.Id, userId)
	return toNoteResponse(&note), nil
}

func (s *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperror.Internal("Failed to load note", err)
	}
	if note == nil {
		return nil, apperror.NotFound(notFoundMessage)
	}

	var removedUrls []string

	if req.Title != nil {
		title := coerceTitle(req.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		note.Title = title
	}
	if req.Content != nil {
		if err := validateContent(req.Content); err != nil {
			return nil, err
		}
		removedUrls = s.extractor.RemovedURLs(note.Content, req.Content)
		note.Content = req.Content
	}
	if req.Tags != nil {
		tags, err := validateTags(req.Tags)
		if err != nil {
			return nil, err
		}
		note.Tags = tags
	}

	now := time.Now()
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, apperror.Internal("Failed to update note", err)
	}

	// Objects dropped from the content are reclaimed off the request path;
	// a cleanup failure never fails the update that orphaned them.
	if len(removedUrls) > 0 {
		go s.cleanupBlobs(note.Id, removedUrls)
	}

	s.publishNoteEvent(ctx, events.TypeNoteUpdated, note.Id, userId)
	return toNoteResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return apperror.Internal("Failed to load note", err)
	}
	if note == nil {
		return apperror.NotFound(notFoundMessage)
	}

	urls := s.extractor.ExtractURLs(note.Content)

	if err := uow.NoteRepository().Delete(ctx, note.Id); err != nil {
		return apperror.Internal("Failed to delete note", err)
	}

	// The note row is gone; blob cleanup is best effort from here. Orphaned
	// blobs are preferable to orphaned notes.
	if len(urls) > 0 {
		go s.cleanupBlobs(note.Id, urls)
	}

	s.publishNoteEvent(ctx, events.TypeNoteDeleted, note.Id, userId)
	return nil
}

func (s *noteService) cleanupBlobs(noteId uuid.UUID, urls []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.blobService.DeleteUnchecked(ctx, urls); err != nil {
		s.logger.Warn("note", "Failed to clean up removed blobs", map[string]interface{}{
			"note_id": noteId,
			"urls":    urls,
			"error":   err.Error(),
		})
	}
}

func (s *noteService) publishNoteEvent(ctx context.Context, eventType string, noteId, userId uuid.UUID) {
	evt := events.NewNoteEvent(eventType, noteId.String(), userId.String())

	if s.dispatcher != nil {
		s.dispatcher.Publish(evt)
	}
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("note", "Failed to publish note event to bus", map[string]interface{}{
				"event": eventType,
				"error": err.Error(),
			})
		}
	}
}
