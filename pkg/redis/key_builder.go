package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	switch environment {
	case "development", "staging":
		prefix = "staging"
	case "test":
		prefix = "test"
	}

	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("bolt:%s:%s", kb.prefix, key)
}

// KeyLoginAttempts is the failed-login counter for a hashed email
func (kb *KeyBuilder) KeyLoginAttempts(emailHash string) string {
	return kb.BuildKey(fmt.Sprintf(KeyLoginAttempts, emailHash))
}
