// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/spotauth/internal/models"
)

// UserStore is an in-memory [models.UserStore] that counts calls and can be told to fail.
type UserStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	nextID    int
	FindErr   error
	CreateErr error
	finds     int
	creates   int
}

// NewUserStore creates a [UserStore] seeded with users. Seeded users without an id get one assigned.
func NewUserStore(users ...*models.User) *UserStore {
	s := &UserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		if u.ID() == "" {
			s.nextID++
			u.SetID(fmt.Sprintf("user-%d", s.nextID))
		}
		s.users[u.SpotifyID()] = u
	}
	return s
}

func (s *UserStore) FindBySpotifyID(ctx context.Context, spotifyID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds++
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	return s.users[spotifyID], nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.users[user.SpotifyID()]; ok {
		return fmt.Errorf("duplicate spotify id %s", user.SpotifyID())
	}
	s.nextID++
	user.SetID(fmt.Sprintf("user-%d", s.nextID))
	s.users[user.SpotifyID()] = user
	return nil
}

// Calls returns how many lookups and inserts the store has served.
func (s *UserStore) Calls() (finds, creates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds, s.creates
}

// Get returns the stored user for spotifyID, if any.
func (s *UserStore) Get(spotifyID string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[spotifyID]
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Endpoint is a fake provider endpoint that answers with a fixed status and body and counts hits.
type Endpoint struct {
	Status int
	Body   string
	hits   atomic.Int32

	mu          sync.Mutex
	lastRequest *http.Request
	lastBody    string
}

// Hits returns the number of requests the endpoint received.
func (e *Endpoint) Hits() int { return int(e.hits.Load()) }

// LastRequest returns the most recent request and its body.
func (e *Endpoint) LastRequest() (*http.Request, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRequest, e.lastBody
}

func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.hits.Add(1)
	body, _ := io.ReadAll(r.Body)
	e.mu.Lock()
	e.lastRequest = r.Clone(context.Background())
	e.lastBody = string(body)
	e.mu.Unlock()

	status := e.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, e.Body)
}

// FakeSpotify serves fake token and profile endpoints from one [httptest.Server].
//
// The token endpoint lives at /api/token and the profile endpoint at /v1/me.
type FakeSpotify struct {
	Server  *httptest.Server
	Token   *Endpoint
	Profile *Endpoint
}

// NewFakeSpotify starts a [FakeSpotify] and registers its shutdown with t.
func NewFakeSpotify(t *testing.T, token, profile *Endpoint) *FakeSpotify {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle("/api/token", token)
	mux.Handle("/v1/me", profile)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &FakeSpotify{Server: srv, Token: token, Profile: profile}
}

// TokenURL returns the fake token endpoint URL.
func (f *FakeSpotify) TokenURL() string { return f.Server.URL + "/api/token" }

// APIBaseURL returns the fake Web API base URL.
func (f *FakeSpotify) APIBaseURL() string { return f.Server.URL + "/v1" }

// TokenJSON returns a token endpoint body carrying accessToken.
func TokenJSON(accessToken string) string {
	return fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer","expires_in":3600,"scope":"user-read-private"}`, accessToken)
}

// ProfileJSON returns a /me body for spotifyID. An empty imageURL omits the images array.
func ProfileJSON(spotifyID, displayName, imageURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"id":%q,"display_name":%q`, spotifyID, displayName)
	if imageURL != "" {
		fmt.Fprintf(&b, `,"images":[{"url":%q,"height":300,"width":300}]`, imageURL)
	}
	b.WriteString(`}`)
	return b.String()
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FailingPinger always fails PingContext.
type FailingPinger struct{}

func (FailingPinger) PingContext(ctx context.Context) error {
	return errors.New("database is unreachable")
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return dir
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}
