package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/spotauth/internal/models"
	"github.com/desertthunder/spotauth/internal/services"
	"github.com/desertthunder/spotauth/internal/shared"
	tu "github.com/desertthunder/spotauth/internal/testing"
)

const testFrontendURL = "http://127.0.0.1:5173/"

type authFixture struct {
	handler *AuthHandler
	spotify *tu.FakeSpotify
	store   *tu.UserStore
	logs    *bytes.Buffer
}

func newAuthFixture(t *testing.T, token, profile *tu.Endpoint, store *tu.UserStore) *authFixture {
	t.Helper()

	fake := tu.NewFakeSpotify(t, token, profile)
	provider, err := services.NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		RedirectURI:  "http://127.0.0.1:8000/callback",
		TokenURL:     fake.TokenURL(),
		APIBaseURL:   fake.APIBaseURL(),
	}, fake.Server.Client())
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	logs := &bytes.Buffer{}
	handler, err := NewAuthHandler(provider, store, testFrontendURL, shared.NewLogger(logs))
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}

	return &authFixture{handler: handler, spotify: fake, store: store, logs: logs}
}

func (f *authFixture) callback(code string) *httptest.ResponseRecorder {
	target := "/callback"
	if code != "" {
		target += "?code=" + url.QueryEscape(code)
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	f.handler.Callback(rec, req)
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
	return body.Detail
}

func redirectQuery(t *testing.T, rec *httptest.ResponseRecorder) url.Values {
	t.Helper()

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", rec.Code, rec.Body.String())
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("invalid Location header: %v", err)
	}
	if got := loc.Scheme + "://" + loc.Host + loc.Path; got != testFrontendURL {
		t.Errorf("expected redirect to %s, got %s", testFrontendURL, got)
	}
	return loc.Query()
}

func TestAuthHandler(t *testing.T) {
	t.Run("NewAuthHandler", func(t *testing.T) {
		provider, _ := services.NewSpotifyService(shared.SpotifyConfig{
			ClientID: "id", ClientSecret: "secret", RedirectURI: "http://127.0.0.1:8000/callback",
		}, nil)

		t.Run("Missing Dependencies", func(t *testing.T) {
			if _, err := NewAuthHandler(nil, tu.NewUserStore(), testFrontendURL, nil); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if _, err := NewAuthHandler(provider, nil, testFrontendURL, nil); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("Invalid Frontend URL", func(t *testing.T) {
			for _, raw := range []string{"", "http://[::1"} {
				if _, err := NewAuthHandler(provider, tu.NewUserStore(), raw, nil); !errors.Is(err, shared.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig for %q, got %v", raw, err)
				}
			}
		})

		t.Run("Routes", func(t *testing.T) {
			h, err := NewAuthHandler(provider, tu.NewUserStore(), testFrontendURL, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			routes := h.Routes()
			if len(routes) != 2 || routes[0].Path != "/login" || routes[1].Path != "/callback" {
				t.Errorf("unexpected routes %+v", routes)
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		f := newAuthFixture(t, &tu.Endpoint{}, &tu.Endpoint{}, tu.NewUserStore())

		rec := httptest.NewRecorder()
		f.handler.Login(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}

		loc, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatalf("invalid Location header: %v", err)
		}
		if loc.Host != "accounts.spotify.com" || loc.Path != "/authorize" {
			t.Errorf("expected Spotify authorize endpoint, got %s", loc.String())
		}

		q := loc.Query()
		if q.Get("response_type") != "code" {
			t.Errorf("expected response_type=code, got %q", q.Get("response_type"))
		}
		if q.Get("client_id") != "test_client_id" {
			t.Errorf("expected client id, got %q", q.Get("client_id"))
		}
		if q.Get("redirect_uri") != "http://127.0.0.1:8000/callback" {
			t.Errorf("expected redirect uri, got %q", q.Get("redirect_uri"))
		}
		wantScope := "user-read-private user-read-email user-library-read streaming user-read-playback-state user-modify-playback-state"
		if q.Get("scope") != wantScope {
			t.Errorf("expected scope %q, got %q", wantScope, q.Get("scope"))
		}

		if f.spotify.Token.Hits() != 0 || f.spotify.Profile.Hits() != 0 {
			t.Error("login should not call the provider")
		}
	})

	t.Run("Callback", func(t *testing.T) {
		t.Run("Creates New User", func(t *testing.T) {
			store := tu.NewUserStore()
			f := newAuthFixture(t,
				&tu.Endpoint{Body: tu.TokenJSON("tok-abc")},
				&tu.Endpoint{Body: tu.ProfileJSON("spotify-1", "Jane", "https://i.scdn.co/image/1")},
				store,
			)

			q := redirectQuery(t, f.callback("code-1"))

			user := store.Get("spotify-1")
			if user == nil {
				t.Fatal("expected user to be created")
			}
			if q.Get("access_token") != "tok-abc" {
				t.Errorf("expected access_token tok-abc, got %q", q.Get("access_token"))
			}
			if q.Get("user_id") != user.ID() {
				t.Errorf("expected user_id %s, got %q", user.ID(), q.Get("user_id"))
			}
			if _, creates := store.Calls(); creates != 1 {
				t.Errorf("expected exactly one insert, got %d", creates)
			}
			if user.DisplayName() == nil || *user.DisplayName() != "Jane" {
				t.Errorf("expected display name Jane, got %v", user.DisplayName())
			}
			if user.ProfileImage() == nil || *user.ProfileImage() != "https://i.scdn.co/image/1" {
				t.Errorf("expected profile image, got %v", user.ProfileImage())
			}
			if !strings.Contains(f.logs.String(), "created new user") {
				t.Errorf("expected creation to be logged, got %q", f.logs.String())
			}

			req, body := f.spotify.Token.LastRequest()
			if id, secret, ok := req.BasicAuth(); !ok || id != "test_client_id" || secret != "test_client_secret" {
				t.Errorf("expected basic client auth, got %q", req.Header.Get("Authorization"))
			}
			form, _ := url.ParseQuery(body)
			if form.Get("code") != "code-1" || form.Get("grant_type") != "authorization_code" {
				t.Errorf("unexpected token form %q", body)
			}

			profileReq, _ := f.spotify.Profile.LastRequest()
			if profileReq.Header.Get("Authorization") != "Bearer tok-abc" {
				t.Errorf("expected bearer token on profile request, got %q", profileReq.Header.Get("Authorization"))
			}
		})

		t.Run("Existing User Is Not Updated", func(t *testing.T) {
			existing := models.NewUser("spotify-1", "Old Name", "https://i.scdn.co/old")
			existing.SetID("local-42")
			store := tu.NewUserStore(existing)

			f := newAuthFixture(t,
				&tu.Endpoint{Body: tu.TokenJSON("tok-abc")},
				&tu.Endpoint{Body: tu.ProfileJSON("spotify-1", "New Name", "https://i.scdn.co/new")},
				store,
			)

			q := redirectQuery(t, f.callback("code-1"))

			if q.Get("user_id") != "local-42" {
				t.Errorf("expected existing user id local-42, got %q", q.Get("user_id"))
			}
			if _, creates := store.Calls(); creates != 0 {
				t.Errorf("expected no insert, got %d", creates)
			}

			user := store.Get("spotify-1")
			if *user.DisplayName() != "Old Name" || *user.ProfileImage() != "https://i.scdn.co/old" {
				t.Errorf("existing user should be unchanged, got %v / %v", *user.DisplayName(), *user.ProfileImage())
			}
			if !strings.Contains(f.logs.String(), "user logged in") {
				t.Errorf("expected login to be logged, got %q", f.logs.String())
			}
		})

		t.Run("Missing Images Stored As Absent", func(t *testing.T) {
			for name, profile := range map[string]string{
				"absent": `{"id":"spotify-1","display_name":"Jane"}`,
				"empty":  `{"id":"spotify-1","display_name":"Jane","images":[]}`,
			} {
				t.Run(name, func(t *testing.T) {
					store := tu.NewUserStore()
					f := newAuthFixture(t, &tu.Endpoint{Body: tu.TokenJSON("tok")}, &tu.Endpoint{Body: profile}, store)

					redirectQuery(t, f.callback("code"))

					user := store.Get("spotify-1")
					if user == nil {
						t.Fatal("expected user to be created")
					}
					if user.ProfileImage() != nil {
						t.Errorf("expected nil profile image, got %q", *user.ProfileImage())
					}
				})
			}
		})

		t.Run("Missing Display Name Stored As Absent", func(t *testing.T) {
			store := tu.NewUserStore()
			f := newAuthFixture(t, &tu.Endpoint{Body: tu.TokenJSON("tok")}, &tu.Endpoint{Body: `{"id":"spotify-1","display_name":null}`}, store)

			redirectQuery(t, f.callback("code"))

			if user := store.Get("spotify-1"); user == nil || user.DisplayName() != nil {
				t.Errorf("expected user with nil display name")
			}
		})

		t.Run("Token Exchange Fails", func(t *testing.T) {
			store := tu.NewUserStore()
			f := newAuthFixture(t,
				&tu.Endpoint{Status: http.StatusBadRequest, Body: `{"error":"invalid_grant","error_description":"secret-provider-detail"}`},
				&tu.Endpoint{Body: tu.ProfileJSON("spotify-1", "", "")},
				store,
			)

			rec := f.callback("bad-code")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if detail := decodeDetail(t, rec); detail != "Failed to retrieve token" {
				t.Errorf("expected token detail, got %q", detail)
			}
			if strings.Contains(rec.Body.String(), "secret-provider-detail") {
				t.Error("provider error body must not reach the client")
			}
			if !strings.Contains(f.logs.String(), "secret-provider-detail") {
				t.Error("provider error body should be logged")
			}
			if f.spotify.Profile.Hits() != 0 {
				t.Error("profile endpoint must not be called")
			}
			if finds, creates := store.Calls(); finds != 0 || creates != 0 {
				t.Errorf("store must not be called, got %d finds %d creates", finds, creates)
			}
		})

		t.Run("Token Response Missing Access Token", func(t *testing.T) {
			store := tu.NewUserStore()
			f := newAuthFixture(t, &tu.Endpoint{Body: `{"token_type":"Bearer"}`}, &tu.Endpoint{}, store)

			rec := f.callback("code")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if detail := decodeDetail(t, rec); detail != "Failed to retrieve token" {
				t.Errorf("expected token detail, got %q", detail)
			}
			if f.spotify.Profile.Hits() != 0 {
				t.Error("profile endpoint must not be called")
			}
			if !strings.Contains(f.logs.String(), "malformed provider response") {
				t.Errorf("expected malformed response to be logged distinctly, got %q", f.logs.String())
			}
		})

		t.Run("Profile Fetch Fails", func(t *testing.T) {
			store := tu.NewUserStore()
			f := newAuthFixture(t,
				&tu.Endpoint{Body: tu.TokenJSON("tok")},
				&tu.Endpoint{Status: http.StatusForbidden, Body: `{"error":{"status":403,"message":"user not registered"}}`},
				store,
			)

			rec := f.callback("code")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if detail := decodeDetail(t, rec); detail != "Failed to retrieve user profile" {
				t.Errorf("expected profile detail, got %q", detail)
			}
			if !strings.Contains(f.logs.String(), "user not registered") {
				t.Error("profile error body should be logged")
			}
			if finds, creates := store.Calls(); finds != 0 || creates != 0 {
				t.Errorf("store must not be called, got %d finds %d creates", finds, creates)
			}
		})

		t.Run("Profile Missing ID", func(t *testing.T) {
			store := tu.NewUserStore()
			f := newAuthFixture(t, &tu.Endpoint{Body: tu.TokenJSON("tok")}, &tu.Endpoint{Body: `{"display_name":"Jane"}`}, store)

			rec := f.callback("code")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if detail := decodeDetail(t, rec); detail != "Failed to retrieve user profile" {
				t.Errorf("expected profile detail, got %q", detail)
			}
			if finds, _ := store.Calls(); finds != 0 {
				t.Error("store must not be called")
			}
		})

		t.Run("Store Failures", func(t *testing.T) {
			tc := []struct {
				name  string
				setup func(*tu.UserStore)
			}{
				{"lookup", func(s *tu.UserStore) { s.FindErr = errors.New("connection refused: internal-host:5432") }},
				{"insert", func(s *tu.UserStore) { s.CreateErr = errors.New("UNIQUE constraint failed: users.spotify_id") }},
			}

			for _, tt := range tc {
				t.Run(tt.name, func(t *testing.T) {
					store := tu.NewUserStore()
					tt.setup(store)
					f := newAuthFixture(t, &tu.Endpoint{Body: tu.TokenJSON("tok")}, &tu.Endpoint{Body: tu.ProfileJSON("spotify-1", "", "")}, store)

					rec := f.callback("code")

					if rec.Code != http.StatusInternalServerError {
						t.Fatalf("expected 500, got %d", rec.Code)
					}
					if detail := decodeDetail(t, rec); detail != "Database Error" {
						t.Errorf("expected database detail, got %q", detail)
					}
					if strings.Contains(rec.Body.String(), "constraint") || strings.Contains(rec.Body.String(), "internal-host") {
						t.Error("store error must not reach the client")
					}
					if rec.Header().Get("Location") != "" {
						t.Error("failed callback must not redirect")
					}
				})
			}
		})

		t.Run("Missing Code", func(t *testing.T) {
			store := tu.NewUserStore()
			f := newAuthFixture(t, &tu.Endpoint{}, &tu.Endpoint{}, store)

			req := httptest.NewRequest(http.MethodGet, "/callback?error=access_denied", nil)
			rec := httptest.NewRecorder()
			f.handler.Callback(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if detail := decodeDetail(t, rec); detail != "Missing authorization code" {
				t.Errorf("unexpected detail %q", detail)
			}
			if f.spotify.Token.Hits() != 0 {
				t.Error("token endpoint must not be called without a code")
			}
			if !strings.Contains(f.logs.String(), "access_denied") {
				t.Error("provider error parameter should be logged")
			}
		})
	})
}

func TestFrontendRedirect(t *testing.T) {
	tc := []struct {
		name     string
		frontend string
		want     string
	}{
		{"plain", "http://127.0.0.1:5173/", "http://127.0.0.1:5173/?access_token=tok&user_id=u1"},
		{"no trailing slash", "https://app.example.com", "https://app.example.com?access_token=tok&user_id=u1"},
		{"existing query", "https://app.example.com/play?mode=game", "https://app.example.com/play?access_token=tok&mode=game&user_id=u1"},
	}

	provider, _ := services.NewSpotifyService(shared.SpotifyConfig{
		ClientID: "id", ClientSecret: "secret", RedirectURI: "http://127.0.0.1:8000/callback",
	}, nil)

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewAuthHandler(provider, tu.NewUserStore(), tt.frontend, nil)
			if err != nil {
				t.Fatalf("failed to create handler: %v", err)
			}
			if got := h.frontendRedirect("tok", "u1"); got != tt.want {
				t.Errorf("frontendRedirect() = %q, want %q", got, tt.want)
			}
		})
	}
}
