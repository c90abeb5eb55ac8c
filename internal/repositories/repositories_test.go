package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := models.NewUser("spotify-1", "Jane", "https://i.scdn.co/image/1")

		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if user.ID() == "" {
			t.Error("user ID should be set after creation")
		}
		if user.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", user.Sequence())
		}
	})

	t.Run("Create Assigns Increasing Sequences", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		for i := 1; i <= 3; i++ {
			user := models.NewUser(fmt.Sprintf("spotify-%d", i), "", "")
			if err := repo.Create(ctx, user); err != nil {
				t.Fatalf("failed to create user %d: %v", i, err)
			}
			if user.Sequence() != i {
				t.Errorf("expected sequence %d, got %d", i, user.Sequence())
			}
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := models.NewUser("spotify-1", "Jane", "")

		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		retrieved, err := repo.Get(ctx, user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}

		if retrieved.ID() != user.ID() {
			t.Errorf("expected ID %s, got %s", user.ID(), retrieved.ID())
		}
		if retrieved.SpotifyID() != "spotify-1" {
			t.Errorf("expected spotify id spotify-1, got %s", retrieved.SpotifyID())
		}
		if retrieved.DisplayName() == nil || *retrieved.DisplayName() != "Jane" {
			t.Errorf("expected display name Jane, got %v", retrieved.DisplayName())
		}
		if retrieved.ProfileImage() != nil {
			t.Errorf("expected nil profile image, got %v", *retrieved.ProfileImage())
		}
		if retrieved.CreatedAt().IsZero() {
			t.Error("expected created_at to be read back")
		}
	})

	t.Run("FindBySpotifyID", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := models.NewUser("spotify-1", "", "https://i.scdn.co/image/1")

		if err := repo.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		t.Run("Existing", func(t *testing.T) {
			found, err := repo.FindBySpotifyID(ctx, "spotify-1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if found == nil {
				t.Fatal("expected user to be found")
			}
			if found.ID() != user.ID() {
				t.Errorf("expected ID %s, got %s", user.ID(), found.ID())
			}
			if found.DisplayName() != nil {
				t.Errorf("expected nil display name, got %v", *found.DisplayName())
			}
		})

		t.Run("Missing", func(t *testing.T) {
			found, err := repo.FindBySpotifyID(ctx, "spotify-2")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if found != nil {
				t.Errorf("expected nil user, got %v", found.ID())
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		for _, id := range []string{"a", "b", "c"} {
			if err := repo.Create(ctx, models.NewUser(id, "", "")); err != nil {
				t.Fatalf("failed to create user %s: %v", id, err)
			}
		}

		users, err := repo.List(ctx, map[string]any{})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 3 {
			t.Fatalf("expected 3 users, got %d", len(users))
		}
		if users[0].SpotifyID() != "a" || users[2].SpotifyID() != "c" {
			t.Errorf("expected users ordered by sequence")
		}

		t.Run("By Spotify ID", func(t *testing.T) {
			users, err := repo.List(ctx, map[string]any{"spotify_id": "b"})
			if err != nil {
				t.Fatalf("failed to list users: %v", err)
			}
			if len(users) != 1 || users[0].SpotifyID() != "b" {
				t.Errorf("expected only user b, got %d users", len(users))
			}
		})

		t.Run("With Limit", func(t *testing.T) {
			users, err := repo.List(ctx, map[string]any{"limit": 2})
			if err != nil {
				t.Fatalf("failed to list users: %v", err)
			}
			if len(users) != 2 {
				t.Errorf("expected 2 users, got %d", len(users))
			}
		})
	})
}
