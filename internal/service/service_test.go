package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"bolt-api/internal/domain"
	"bolt-api/internal/repository"
	"bolt-api/internal/repository/memory"
	"bolt-api/pkg/auth"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testAvatar = "https://example.com/default.jpg"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	repos  *repository.Repositories
	clock  *fakeClock
	creds  *CredentialService
	groups *GroupService
	polls  *PollService
}

func newTestEnv(t *testing.T, cfg PollConfig, throttle *LoginThrottle) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	repos := memory.NewRepositories()
	clock := newFakeClock()

	polls := NewPollService(repos, cfg, logger).WithClock(clock.Now)
	return &testEnv{
		repos:  repos,
		clock:  clock,
		creds:  NewCredentialService(repos.Users, auth.NewBcryptHasher(bcrypt.MinCost), throttle, testAvatar, logger).WithClock(clock.Now),
		groups: NewGroupService(repos, polls, logger).WithClock(clock.Now),
		polls:  polls,
	}
}

func (e *testEnv) register(t *testing.T, username string) *domain.User {
	t.Helper()

	user, err := e.creds.Register(context.Background(), username, username+"@example.com", "password123")
	require.NoError(t, err)
	return user
}

func (e *testEnv) group(t *testing.T, name string, creator *domain.User) *domain.Group {
	t.Helper()

	group, err := e.groups.CreateGroup(context.Background(), name, "", creator.ID)
	require.NoError(t, err)
	return group
}

func (e *testEnv) poll(t *testing.T, group *domain.Group, creator *domain.User, options ...string) *domain.PollView {
	t.Helper()

	view, err := e.polls.CreatePoll(context.Background(), domain.CreatePollInput{
		GroupID:   group.ID,
		Title:     "Pick",
		Options:   options,
		CreatorID: creator.ID,
	})
	require.NoError(t, err)
	return view
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
