package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tastebook/core"
	"tastebook/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func newTestUser(email string) *core.User {
	now := time.Now()
	return &core.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSQLiteRepository_CreateAndFindUser(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := newTestUser("a@x.com")
	require.NoError(t, repo.CreateUser(ctx, user))

	byID, err := repo.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byID.ID)
	assert.Equal(t, "a@x.com", byID.Email)
	assert.Equal(t, user.PasswordHash, byID.PasswordHash)

	byEmail, err := repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestSQLiteRepository_FindUser_NotFound(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.FindUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.FindUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteRepository_CreateUser_DuplicateEmail(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, newTestUser("a@x.com")))

	err := repo.CreateUser(ctx, newTestUser("a@x.com"))
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)
}

func TestSQLiteRepository_UpsertProfile(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := newTestUser("a@x.com")
	require.NoError(t, repo.CreateUser(ctx, user))

	profile := &core.Profile{
		UserID: user.ID,
		Name:   "Ada",
		Gender: core.GenderOther,
	}
	require.NoError(t, repo.UpsertProfile(ctx, profile))

	got, err := repo.FindProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, core.GenderOther, got.Gender)
	assert.Equal(t, 0, got.Age)

	// Second upsert updates in place
	profile.Name = "Ada L."
	profile.Age = 30
	profile.Gender = core.GenderFemale
	profile.Bio = "Pioneer"
	profile.AvatarURL = "https://example.com/ada.jpg"
	require.NoError(t, repo.UpsertProfile(ctx, profile))

	got, err = repo.FindProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Equal(t, 30, got.Age)
	assert.Equal(t, core.GenderFemale, got.Gender)
	assert.Equal(t, "Pioneer", got.Bio)
	assert.Equal(t, "https://example.com/ada.jpg", got.AvatarURL)
}

func TestSQLiteRepository_FindProfile_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.FindProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
}
