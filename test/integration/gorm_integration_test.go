package integration

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"notable-be/internal/entity"
	"notable-be/internal/repository/specification"
	"notable-be/internal/repository/unitofwork"
	"notable-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.NoteRepository())
	assert.NotNil(t, uow.BlobMetadataRepository())
	assert.NotNil(t, uow.AuditLogRepository())

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	t.Run("Check Table Access", func(t *testing.T) {
		ctx := context.Background()
		for name, count := range map[string]func() (int64, error){
			"users": func() (int64, error) { return uow.UserRepository().Count(ctx) },
			"notes": func() (int64, error) { return uow.NoteRepository().Count(ctx) },
			"blobs": func() (int64, error) { return uow.BlobMetadataRepository().Count(ctx) },
		} {
			n, err := count()
			assert.NoError(t, err)
			t.Logf("%s count: %d", name, n)
		}
	})

	t.Run("Note Round Trip", func(t *testing.T) {
		ctx := context.Background()

		user := &entity.User{
			Id:           uuid.New(),
			Email:        "test-integration-" + uuid.New().String() + "@example.com",
			PasswordHash: "not-a-real-hash",
			FullName:     "Integration Test User",
			CreatedAt:    time.Now(),
		}
		require.NoError(t, uow.UserRepository().Create(ctx, user))

		now := time.Now()
		note := &entity.Note{
			Id:        uuid.New(),
			Title:     "Integration Note",
			Content:   json.RawMessage(`[{"type":"paragraph","content":"hello"}]`),
			Tags:      []string{"integration", "test"},
			UserId:    user.Id,
			CreatedAt: now,
			UpdatedAt: &now,
		}
		require.NoError(t, uow.NoteRepository().Create(ctx, note))

		found, err := uow.NoteRepository().FindOne(ctx,
			specification.ByID{ID: note.Id},
			specification.UserOwnedBy{UserID: user.Id},
		)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Integration Note", found.Title)
		assert.ElementsMatch(t, []string{"integration", "test"}, found.Tags)
		assert.JSONEq(t, string(note.Content), string(found.Content))

		// Cleanup
		assert.NoError(t, uow.NoteRepository().Delete(ctx, note.Id))
		assert.NoError(t, uow.UserRepository().Delete(ctx, user.Id))
	})
}
