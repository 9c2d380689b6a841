package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bolt-api/internal/config"
	"bolt-api/internal/container"
	"bolt-api/pkg/logger"
)

const testJWTSecret = "handler-test-secret-with-32-chars!"

type testServer struct {
	t         *testing.T
	container *container.Container
	handler   http.Handler
}

func newTestServer(t *testing.T, modify func(cfg *config.Config)) *testServer {
	t.Helper()

	cfg := &config.Config{
		Environment:           "test",
		StoreDriver:           config.StoreMemory,
		JWTSecret:             testJWTSecret,
		TokenTTL:              time.Hour,
		PollDefaultExpireDays: 7,
		LoginMaxAttempts:      5,
		LoginAttemptWindow:    15 * time.Minute,
		DefaultAvatarURL:      config.DefaultAvatarURL,
		BcryptCost:            bcrypt.MinCost,
	}
	if modify != nil {
		modify(cfg)
	}

	c, err := container.New(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return &testServer{t: t, container: c, handler: NewRouter(c)}
}

func withRedis(t *testing.T) (*miniredis.Miniredis, func(cfg *config.Config)) {
	mr := miniredis.RunT(t)
	return mr, func(cfg *config.Config) {
		cfg.RedisURL = "redis://" + mr.Addr()
	}
}

// do sends body as JSON. A string body is sent verbatim.
func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type userJSON struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

type authJSON struct {
	User      userJSON   `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type errorJSON struct {
	Error struct {
		Type      string            `json:"type"`
		Message   string            `json:"message"`
		Details   map[string]string `json:"details"`
		RequestID string            `json:"request_id"`
	} `json:"error"`
}

type groupJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatorID   string   `json:"creator_id"`
	Members     []string `json:"members"`
}

type optionJSON struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	VoteCount int       `json:"vote_count"`
	Votes     *[]string `json:"votes"`
}

type pollJSON struct {
	ID         string       `json:"id"`
	GroupID    string       `json:"group_id"`
	Question   string       `json:"question"`
	Title      string       `json:"title"`
	CreatorID  string       `json:"creator_id"`
	ExpireAt   *time.Time   `json:"expire_at"`
	Active     bool         `json:"active"`
	TotalVotes int          `json:"total_votes"`
	Options    []optionJSON `json:"options"`
}

type groupViewJSON struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Members []userJSON `json:"members"`
	Polls   []pollJSON `json:"polls"`
}

func (s *testServer) register(username string) authJSON {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/auth/register", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "password123",
	}, "")
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authJSON](s.t, rec)
}

func (s *testServer) createGroup(name, creatorID string) groupJSON {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/groups", map[string]string{
		"name":       name,
		"creator_id": creatorID,
	}, "")
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[groupJSON](s.t, rec)
}

func (s *testServer) createPoll(groupID, creatorID string, options ...string) pollJSON {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/groups/"+groupID+"/polls", map[string]interface{}{
		"question":   "Pick",
		"options":    options,
		"creator_id": creatorID,
	}, "")
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[pollJSON](s.t, rec)
}
