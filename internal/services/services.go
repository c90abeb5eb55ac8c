// package services defines the identity provider client used by the login flow
package services

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// Provider is the identity provider contract used by the HTTP handlers.
type Provider interface {
	// AuthURL returns the provider's authorization URL for the registered client.
	AuthURL() string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// UserProfile fetches the profile of the user the token was issued to.
	UserProfile(ctx context.Context, token *oauth2.Token) (*SpotifyUser, error)
}

// ProviderError describes a failed call to the identity provider.
type ProviderError struct {
	Kind       error  // one of the shared provider sentinels
	StatusCode int    // zero when no response was received
	Body       string // raw provider response, never shown to clients
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%v: status %d: %v", e.Kind, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%v: status %d", e.Kind, e.StatusCode)
	default:
		return e.Kind.Error()
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Kind
}
