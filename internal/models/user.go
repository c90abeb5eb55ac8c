package models

import (
	"fmt"
	"time"
)

// User is a local account linked to exactly one Spotify account.
//
// Display name and profile image are optional and captured once, on first login.
type User struct {
	id           string
	sequence     int
	spotifyID    string
	displayName  *string
	profileImage *string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates a [User] for the given Spotify account. Empty displayName or profileImage are stored as absent.
func NewUser(spotifyID, displayName, profileImage string) *User {
	now := time.Now().UTC()
	return &User{
		spotifyID:    spotifyID,
		displayName:  optional(displayName),
		profileImage: optional(profileImage),
		createdAt:    now,
		updatedAt:    now,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (u *User) ID() string { return u.id }
func (u *User) Sequence() int { return u.sequence }
func (u *User) SpotifyID() string { return u.spotifyID }
func (u *User) DisplayName() *string { return u.displayName }
func (u *User) ProfileImage() *string { return u.profileImage }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
func (u *User) SetID(id string) { u.id = id }
func (u *User) SetSequence(seq int) { u.sequence = seq }
func (u *User) SetCreatedAt(t time.Time) { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time) { u.updatedAt = t }
func (u *User) SetDisplayName(name *string) { u.displayName = name }
func (u *User) SetProfileImage(url *string) { u.profileImage = url }

// Validate checks that the user carries a Spotify identity.
func (u *User) Validate() error {
	if u.spotifyID == "" {
		return fmt.Errorf("spotify id is required")
	}
	return nil
}

// UserView is the JSON shape of a [User] used by the CLI.
type UserView struct {
	ID           string    `json:"id"`
	SpotifyID    string    `json:"spotify_id"`
	DisplayName  *string   `json:"display_name"`
	ProfileImage *string   `json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
}

// View returns the serializable form of u.
func (u *User) View() UserView {
	return UserView{
		ID:           u.id,
		SpotifyID:    u.spotifyID,
		DisplayName:  u.displayName,
		ProfileImage: u.profileImage,
		CreatedAt:    u.createdAt,
	}
}
