package container

import (
	"context"
	"errors"
	"fmt"

	"bolt-api/internal/config"
	"bolt-api/internal/repository"
	"bolt-api/internal/service"
	"bolt-api/pkg/auth"
	"bolt-api/pkg/logger"
	"bolt-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	Store        *Store
	RedisClient  *redis.Client
	Repositories *repository.Repositories
	Services     *service.Services
	// Tokens is nil when JWT_SECRET is not configured
	Tokens *auth.TokenIssuer
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *logger.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
	defer cancel()

	store, repos, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without login throttling")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without login throttling")
	}

	var tokens *auth.TokenIssuer
	if cfg.JWTSecret != "" {
		tokens = auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	} else {
		logger.Info("JWT_SECRET not configured, token issuance disabled")
	}

	throttle := service.NewLoginThrottle(redisClient, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow, logger.Logger)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	polls := service.NewPollService(repos, service.PollConfig{
		DefaultExpireDays: cfg.PollDefaultExpireDays,
		AllowOpenEnded:    cfg.AllowOpenEndedPolls,
	}, logger.Logger)

	services := &service.Services{
		Credentials: service.NewCredentialService(repos.Users, hasher, throttle, cfg.DefaultAvatarURL, logger.Logger),
		Groups:      service.NewGroupService(repos, polls, logger.Logger),
		Polls:       polls,
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		RedisClient:  redisClient,
		Repositories: repos,
		Services:     services,
		Tokens:       tokens,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// HasTokens returns true if JWT issuance is enabled
func (c *Container) HasTokens() bool {
	return c.Tokens != nil
}

// Close releases the Redis client and the store
func (c *Container) Close() error {
	var errs []error
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}
	return errors.Join(errs...)
}
