package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/services"
	"github.com/desertthunder/spotauth/internal/shared"
)

// AuthHandler serves the Spotify login and callback endpoints.
//
// It holds no per-request state; every request runs the whole flow to completion or to its first failure.
type AuthHandler struct {
	provider services.Provider
	users    models.UserStore
	frontend *url.URL
	logger   *log.Logger
}

// NewAuthHandler creates an [AuthHandler] that redirects successful logins to frontendURL.
func NewAuthHandler(provider services.Provider, users models.UserStore, frontendURL string, logger *log.Logger) (*AuthHandler, error) {
	if provider == nil || users == nil {
		return nil, fmt.Errorf("%w: provider and user store are required", shared.ErrInvalidArgument)
	}

	frontend, err := url.Parse(frontendURL)
	if err != nil || frontendURL == "" {
		return nil, fmt.Errorf("%w: frontend url %q", shared.ErrInvalidConfig, frontendURL)
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &AuthHandler{
		provider: provider,
		users:    users,
		frontend: frontend,
		logger:   shared.WithLogger(logger, "component", "auth"),
	}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/login", Handler: h.Login},
		{Method: http.MethodGet, Path: "/callback", Handler: h.Callback},
	}
}

// Login redirects the browser to the provider's authorization page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.provider.AuthURL(), http.StatusFound)
}

// Callback completes the authorization code flow.
//
// Steps run strictly in order and stop at the first failure: token exchange, profile fetch, user upsert,
// then a redirect to the front end carrying the access token and local user id.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	code := query.Get("code")
	if code == "" {
		if providerErr := query.Get("error"); providerErr != "" {
			h.logger.Warn("authorization denied by provider", "error", providerErr)
		}
		badRequest(w, detailMissingCode)
		return
	}

	token, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.logProviderError("token exchange failed", err)
		badRequest(w, detailTokenFailed)
		return
	}

	profile, err := h.provider.UserProfile(ctx, token)
	if err != nil {
		h.logProviderError("user profile fetch failed", err)
		badRequest(w, detailProfileFailed)
		return
	}

	userID, err := h.upsert(ctx, profile)
	if err != nil {
		h.logger.Error("database error", "spotify_id", profile.ID, "error", err)
		serverErr(w, detailDatabase)
		return
	}

	http.Redirect(w, r, h.frontendRedirect(token.AccessToken, userID), http.StatusFound)
}

// upsert returns the local id for the profile's Spotify account, creating the user on first login.
//
// Existing users are returned as stored; their display name and image are not refreshed.
// Concurrent first logins for the same account can race between lookup and insert; the loser fails on the
// store's uniqueness constraint.
func (h *AuthHandler) upsert(ctx context.Context, profile *services.SpotifyUser) (string, error) {
	existing, err := h.users.FindBySpotifyID(ctx, profile.ID)
	if err != nil {
		return "", fmt.Errorf("%w: lookup: %w", shared.ErrStoreOperationFailed, err)
	}

	if existing != nil {
		h.logger.Info("user logged in", "spotify_id", profile.ID)
		return existing.ID(), nil
	}

	user := models.NewUser(profile.ID, profile.DisplayName, profile.ProfileImage())
	if err := h.users.Create(ctx, user); err != nil {
		return "", fmt.Errorf("%w: insert: %w", shared.ErrStoreOperationFailed, err)
	}
	if user.ID() == "" {
		return "", fmt.Errorf("%w: insert returned no id", shared.ErrStoreOperationFailed)
	}

	h.logger.Info("created new user", "spotify_id", profile.ID, "user_id", user.ID())
	return user.ID(), nil
}

// frontendRedirect appends access_token and user_id to the configured front-end URL, keeping any existing query.
func (h *AuthHandler) frontendRedirect(accessToken, userID string) string {
	target := *h.frontend
	q := target.Query()
	q.Set("access_token", accessToken)
	q.Set("user_id", userID)
	target.RawQuery = q.Encode()
	return target.String()
}

func (h *AuthHandler) logProviderError(msg string, err error) {
	kv := []any{"error", err}

	var pe *services.ProviderError
	if errors.As(err, &pe) {
		if pe.StatusCode != 0 {
			kv = append(kv, "status", pe.StatusCode)
		}
		if pe.Body != "" {
			kv = append(kv, "body", pe.Body)
		}
		if errors.Is(pe, shared.ErrProviderResponseMalformed) {
			msg = "malformed provider response during " + msg
		}
	}

	h.logger.Error(msg, kv...)
}
