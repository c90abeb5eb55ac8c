// package models defines the data model for the Spotify login service
package models

import (
	"context"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error                      // Create inserts a new model and assigns its ID
	Get(ctx context.Context, id string) (T, error)                  // Get retrieves a model by its ID
	List(ctx context.Context, criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// UserStore is the persistence contract for the login callback.
//
// FindBySpotifyID returns (nil, nil) when no user has the given Spotify id.
// Create assigns the store-generated local id to the user before returning.
type UserStore interface {
	FindBySpotifyID(ctx context.Context, spotifyID string) (*User, error)
	Create(ctx context.Context, user *User) error
}
