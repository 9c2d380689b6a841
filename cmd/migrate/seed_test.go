package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bolt-api/internal/domain"
	"bolt-api/internal/repository/memory"
	"bolt-api/internal/service"
	"bolt-api/pkg/auth"
)

func newServices() *service.Services {
	repos := memory.NewRepositories()
	logger := zap.NewNop()
	polls := service.NewPollService(repos, service.PollConfig{DefaultExpireDays: 7}, logger)

	return &service.Services{
		Credentials: service.NewCredentialService(repos.Users, auth.NewBcryptHasher(bcrypt.MinCost), nil, "", logger),
		Groups:      service.NewGroupService(repos, polls, logger),
		Polls:       polls,
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	services := newServices()

	summary, err := seed(ctx, services)
	require.NoError(t, err)
	assert.Equal(t, &seedSummary{Users: 3, Groups: 3, Polls: 2, Votes: 5}, summary)

	admin, err := services.Credentials.Authenticate(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "Application administrator", admin.Bio)

	_, err = services.Credentials.Authenticate(ctx, "john@example.com", "password123")
	require.NoError(t, err)

	groups, err := services.Groups.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	var movieNight *domain.GroupView
	for _, g := range groups {
		if g.Name == "Movie Night" {
			movieNight, err = services.Groups.GetGroup(ctx, g.ID)
			require.NoError(t, err)
		}
	}
	require.NotNil(t, movieNight)
	assert.Len(t, movieNight.Members, 3)
	require.Len(t, movieNight.Polls, 1)
	assert.Equal(t, 3, movieNight.Polls[0].TotalVotes)
	for _, opt := range movieNight.Polls[0].Options {
		assert.Equal(t, 1, opt.VoteCount, opt.Text)
	}
}

func TestSeed_RefusesTwice(t *testing.T) {
	ctx := context.Background()
	services := newServices()

	_, err := seed(ctx, services)
	require.NoError(t, err)

	_, err = seed(ctx, services)
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}
