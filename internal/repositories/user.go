package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/shared"
)

const userColumns = `id, sequence, spotify_id, display_name, profile_image, created_at, updated_at`

// UserRepository implements [models.UserStore] and [models.Repository] for [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var (
	_ models.UserStore                = (*UserRepository)(nil)
	_ models.Repository[*models.User] = (*UserRepository)(nil)
)

// Create inserts a new user with a generated ID and sequence, setting both on user.
//
// A second user with the same Spotify id fails with [shared.ErrDuplicateRecord].
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(ctx, tx, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO users (id, sequence, spotify_id, display_name, profile_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		id,
		sequence,
		user.SpotifyID(),
		nullable(user.DisplayName()),
		nullable(user.ProfileImage()),
		user.CreatedAt(),
		user.UpdatedAt(),
	)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return fmt.Errorf("%w: spotify id %s: %v", shared.ErrDuplicateRecord, user.SpotifyID(), err)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user insert: %w", err)
	}

	user.SetID(id)
	user.SetSequence(sequence)
	return nil
}

// Get retrieves a user by local ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// FindBySpotifyID retrieves the user linked to spotifyID, or nil when there is none.
func (r *UserRepository) FindBySpotifyID(ctx context.Context, spotifyID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE spotify_id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, spotifyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by spotify id: %w", err)
	}
	return user, nil
}

// List retrieves all users matching the given criteria, ordered by sequence.
//
// Supported criteria: "spotify_id" (string), "limit" (int).
func (r *UserRepository) List(ctx context.Context, criteria map[string]any) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1 = 1`
	args := []any{}

	if spotifyID, ok := criteria["spotify_id"].(string); ok && spotifyID != "" {
		query += " AND spotify_id = ?"
		args = append(args, spotifyID)
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

func scanUser(row scanner) (*models.User, error) {
	var (
		id           string
		sequence     int
		spotifyID    string
		displayName  sql.NullString
		profileImage sql.NullString
		createdAt    sql.NullTime
		updatedAt    sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &spotifyID, &displayName, &profileImage, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	user := models.NewUser(spotifyID, "", "")
	user.SetID(id)
	user.SetSequence(sequence)
	user.SetDisplayName(fromNull(displayName))
	user.SetProfileImage(fromNull(profileImage))
	if createdAt.Valid {
		user.SetCreatedAt(createdAt.Time)
	}
	if updatedAt.Valid {
		user.SetUpdatedAt(updatedAt.Time)
	}

	return user, nil
}
