package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"tastebook/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema/sqlite/schema.sql
var sqliteSchema string

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &SQLiteRepository{db: db}

	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) initSchema() error {
	_, err := r.db.Exec(sqliteSchema)
	return err
}

func (r *SQLiteRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id.String()))
}

func (r *SQLiteRepository) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*core.User, error) {
	var user core.User
	var idStr string
	var createdAt, updatedAt int64

	err := row.Scan(
		&idStr,
		&user.Email,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.ID = uuid.MustParse(idStr)
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	return &user, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *core.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(),
		user.Email,
		user.PasswordHash,
		user.CreatedAt.Unix(),
		user.UpdatedAt.Unix(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return core.ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *SQLiteRepository) FindProfile(ctx context.Context, userID uuid.UUID) (*core.Profile, error) {
	query := `
		SELECT user_id, name, age, gender, bio, avatar_url, created_at, updated_at
		FROM profiles
		WHERE user_id = ?
	`

	var profile core.Profile
	var userIDStr, genderStr string
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, query, userID.String()).Scan(
		&userIDStr,
		&profile.Name,
		&profile.Age,
		&genderStr,
		&profile.Bio,
		&profile.AvatarURL,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	profile.UserID = uuid.MustParse(userIDStr)
	profile.Gender = core.Gender(genderStr)
	profile.CreatedAt = time.Unix(createdAt, 0)
	profile.UpdatedAt = time.Unix(updatedAt, 0)

	return &profile, nil
}

func (r *SQLiteRepository) UpsertProfile(ctx context.Context, profile *core.Profile) error {
	now := time.Now().Unix()

	query := `
		INSERT INTO profiles (user_id, name, age, gender, bio, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			gender = excluded.gender,
			bio = excluded.bio,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.UserID.String(),
		profile.Name,
		profile.Age,
		string(profile.Gender),
		profile.Bio,
		profile.AvatarURL,
		now,
		now,
	)
	if err != nil {
		return err
	}

	// Keep the account's updated_at in step with profile writes.
	_, err = r.db.ExecContext(ctx, `UPDATE users SET updated_at = ? WHERE id = ?`, now, profile.UserID.String())
	return err
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "UNIQUE constraint failed") ||
		strings.Contains(errMsg, "UNIQUE") ||
		strings.Contains(errMsg, "unique")
}
