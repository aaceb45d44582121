package service

import (
	"context"
	"sort"
	"sync"

	"notable-be/internal/dto"
	"notable-be/internal/entity"
	"notable-be/internal/repository/contract"
	"notable-be/internal/repository/specification"
	"notable-be/internal/repository/unitofwork"
	"notable-be/pkg/blob"

	"github.com/google/uuid"
)

// The fakes below back the service tests with map storage while honoring
// the specification types the real repositories interpret through GORM.

type noteFilter struct {
	id       *uuid.UUID
	userId   *uuid.UUID
	orderBy  string
	desc     bool
	urls     []string
	email    string
	hasEmail bool
}

func parseSpecs(specs []specification.Specification) noteFilter {
	var f noteFilter
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			id := spec.ID
			f.id = &id
		case specification.UserOwnedBy:
			userId := spec.UserID
			f.userId = &userId
		case specification.OrderBy:
			f.orderBy = spec.Field
			f.desc = spec.Desc
		case specification.ByURLs:
			f.urls = spec.URLs
		case specification.ByEmail:
			f.email = spec.Email
			f.hasEmail = true
		}
	}
	return f
}

type memStore struct {
	mu     sync.Mutex
	notes  map[uuid.UUID]entity.Note
	users  map[uuid.UUID]entity.User
	blobs  map[string]entity.BlobMetadata
	audits []entity.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		notes: make(map[uuid.UUID]entity.Note),
		users: make(map[uuid.UUID]entity.User),
		blobs: make(map[string]entity.BlobMetadata),
	}
}

type memNoteRepo struct{ s *memStore }

func (r *memNoteRepo) Create(ctx context.Context, note *entity.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notes[note.Id] = *note
	return nil
}

func (r *memNoteRepo) Update(ctx context.Context, note *entity.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notes[note.Id] = *note
	return nil
}

func (r *memNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.notes, id)
	return nil
}

func (r *memNoteRepo) DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, note := range r.s.notes {
		if note.UserId == userId {
			delete(r.s.notes, id)
		}
	}
	return nil
}

func (r *memNoteRepo) matches(note entity.Note, f noteFilter) bool {
	if f.id != nil && note.Id != *f.id {
		return false
	}
	if f.userId != nil && note.UserId != *f.userId {
		return false
	}
	return true
}

func (r *memNoteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := parseSpecs(specs)
	for _, note := range r.s.notes {
		if r.matches(note, f) {
			found := note
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memNoteRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := parseSpecs(specs)
	var result []*entity.Note
	for _, note := range r.s.notes {
		if r.matches(note, f) {
			found := note
			result = append(result, &found)
		}
	}
	if f.orderBy == "updated_at" {
		sort.Slice(result, func(i, j int) bool {
			a, b := result[i].UpdatedAt, result[j].UpdatedAt
			if a == nil || b == nil {
				return b == nil
			}
			if f.desc {
				return a.After(*b)
			}
			return a.Before(*b)
		})
	}
	return result, nil
}

func (r *memNoteRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	notes, _ := r.FindAll(ctx, specs...)
	return int64(len(notes)), nil
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.Id] = *user
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

func (r *memUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := parseSpecs(specs)
	for _, user := range r.s.users {
		if f.id != nil && user.Id != *f.id {
			continue
		}
		if f.hasEmail && user.Email != f.email {
			continue
		}
		found := user
		return &found, nil
	}
	return nil, nil
}

func (r *memUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

type memBlobRepo struct{ s *memStore }

func (r *memBlobRepo) Create(ctx context.Context, record *entity.BlobMetadata) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.blobs[record.Url] = *record
	return nil
}

func (r *memBlobRepo) DeleteByURLs(ctx context.Context, urls []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, url := range urls {
		delete(r.s.blobs, url)
	}
	return nil
}

func (r *memBlobRepo) DeleteByURLsOwnedBy(ctx context.Context, userId uuid.UUID, urls []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, url := range urls {
		if record, ok := r.s.blobs[url]; ok && record.UserId == userId {
			delete(r.s.blobs, url)
		}
	}
	return nil
}

func (r *memBlobRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BlobMetadata, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := parseSpecs(specs)
	var result []*entity.BlobMetadata
	for _, record := range r.s.blobs {
		if f.userId != nil && record.UserId != *f.userId {
			continue
		}
		if f.urls != nil && !containsURL(f.urls, record.Url) {
			continue
		}
		found := record
		result = append(result, &found)
	}
	return result, nil
}

func containsURL(urls []string, url string) bool {
	for _, u := range urls {
		if u == url {
			return true
		}
	}
	return false
}

func (r *memBlobRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	records, _ := r.FindAll(ctx, specs...)
	return int64(len(records)), nil
}

type memAuditRepo struct{ s *memStore }

func (r *memAuditRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, *log)
	return nil
}

func (r *memAuditRepo) AnonymizeByUserId(ctx context.Context, userId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.audits {
		if r.s.audits[i].UserId != nil && *r.s.audits[i].UserId == userId {
			r.s.audits[i].UserId = nil
		}
	}
	return nil
}

func (r *memAuditRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := parseSpecs(specs)
	var result []*entity.AuditLog
	for i := range r.s.audits {
		if f.userId != nil && (r.s.audits[i].UserId == nil || *r.s.audits[i].UserId != *f.userId) {
			continue
		}
		found := r.s.audits[i]
		result = append(result, &found)
	}
	return result, nil
}

type memUnitOfWork struct{ s *memStore }

func (u *memUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *memUnitOfWork) Commit() error                   { return nil }
func (u *memUnitOfWork) Rollback() error                 { return nil }

func (u *memUnitOfWork) UserRepository() contract.UserRepository { return &memUserRepo{s: u.s} }
func (u *memUnitOfWork) NoteRepository() contract.NoteRepository { return &memNoteRepo{s: u.s} }
func (u *memUnitOfWork) BlobMetadataRepository() contract.BlobMetadataRepository {
	return &memBlobRepo{s: u.s}
}
func (u *memUnitOfWork) AuditLogRepository() contract.AuditLogRepository {
	return &memAuditRepo{s: u.s}
}

type memFactory struct{ s *memStore }

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{s: f.s}
}

// countingStore wraps the in-memory object store and records every delete
// batch it receives.
type countingStore struct {
	*blob.MemoryStore
	mu      sync.Mutex
	deletes [][]string
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: blob.NewMemoryStore("")}
}

func (s *countingStore) Delete(ctx context.Context, urls []string) error {
	s.mu.Lock()
	batch := make([]string, len(urls))
	copy(batch, urls)
	s.deletes = append(s.deletes, batch)
	s.mu.Unlock()
	return s.MemoryStore.Delete(ctx, urls)
}

func (s *countingStore) deleteBatches() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.deletes...)
}

// nopLogger satisfies logger.ILogger for tests.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// recordingAudit captures audit entries synchronously.
type recordingAudit struct {
	mu      sync.Mutex
	entries []dto.AuditEntry
}

func (a *recordingAudit) Record(ctx context.Context, entry dto.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	actions := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		actions = append(actions, e.Action)
	}
	return actions
}
