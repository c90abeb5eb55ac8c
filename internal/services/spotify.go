// Spotify implementation of [Provider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/spotauth/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// maxErrorBody caps how much of a failed provider response is kept for logging.
const maxErrorBody = 64 << 10

// Scopes is the capability set requested at login. The provider silently drops scopes the user declines.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-library-read",
	"streaming",
	"user-read-playback-state",
	"user-modify-playback-state",
}

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ProfileImage returns the URL of the first profile image, or "" when the user has none.
func (u *SpotifyUser) ProfileImage() string {
	if len(u.Images) == 0 {
		return ""
	}
	return u.Images[0].URL
}

// SpotifyService implements [Provider] for the Spotify accounts service and Web API.
type SpotifyService struct {
	config     *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// NewSpotifyService creates a Spotify client from the configured credentials.
//
// A nil httpClient uses [http.DefaultClient]. Empty endpoint URLs fall back to Spotify's production hosts.
func NewSpotifyService(conf shared.SpotifyConfig, httpClient *http.Client) (*SpotifyService, error) {
	if conf.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if conf.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	if conf.RedirectURI == "" {
		return nil, fmt.Errorf("%w: missing redirect_uri", shared.ErrInvalidConfig)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	config := &oauth2.Config{
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		RedirectURL:  conf.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   withDefault(conf.AuthURL, spotifyAuthURL),
			TokenURL:  withDefault(conf.TokenURL, spotifyTokenURL),
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return &SpotifyService{
		config:     config,
		apiBaseURL: strings.TrimSuffix(withDefault(conf.APIBaseURL, spotifyBaseURL), "/"),
		httpClient: httpClient,
	}, nil
}

func withDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthURL returns the authorization URL carrying response_type, client_id, scope and redirect_uri.
//
// No state parameter is sent.
func (s *SpotifyService) AuthURL() string {
	return s.config.AuthCodeURL("")
}

// Exchange trades an authorization code for tokens at the token endpoint.
//
// The client authenticates with HTTP Basic auth and the form body carries grant_type, code and redirect_uri.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.config.Exchange(ctx, code)
	if err == nil {
		return token, nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		pe := &ProviderError{Kind: shared.ErrTokenExchangeFailed, Body: string(retrieveErr.Body), Err: err}
		if retrieveErr.Response != nil {
			pe.StatusCode = retrieveErr.Response.StatusCode
		}
		return nil, pe
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return nil, &ProviderError{Kind: shared.ErrTokenExchangeFailed, Err: err}
	}

	// 2xx responses without an access_token or with an unparseable body land here.
	return nil, &ProviderError{Kind: shared.ErrProviderResponseMalformed, Err: err}
}

// UserProfile retrieves the profile of the user token was issued to from the /me endpoint.
func (s *SpotifyService) UserProfile(ctx context.Context, token *oauth2.Token) (*SpotifyUser, error) {
	if token == nil || token.AccessToken == "" {
		return nil, &ProviderError{Kind: shared.ErrProviderResponseMalformed, Err: errors.New("missing access token")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBaseURL+"/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Kind: shared.ErrProfileFetchFailed, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ProviderError{Kind: shared.ErrProfileFetchFailed, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var user SpotifyUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, &ProviderError{
			Kind:       shared.ErrProviderResponseMalformed,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	if user.ID == "" {
		return nil, &ProviderError{
			Kind:       shared.ErrProviderResponseMalformed,
			StatusCode: resp.StatusCode,
			Err:        errors.New("profile response missing id"),
		}
	}

	return &user, nil
}
