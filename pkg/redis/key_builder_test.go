package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeyBuilder(t *testing.T) {
	tests := []struct {
		environment string
		prefix      string
	}{
		{"production", "prod"},
		{"", "prod"},
		{"development", "staging"},
		{"staging", "staging"},
		{"test", "test"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			assert.Equal(t, "bolt:"+tt.prefix+":raw", NewKeyBuilder(tt.environment).BuildKey("raw"))
		})
	}
}

func TestKeyBuilder_Keys(t *testing.T) {
	kb := NewKeyBuilder("production")

	assert.Equal(t, "bolt:prod:auth:login:abc123:attempts", kb.KeyLoginAttempts("abc123"))
	assert.Equal(t, "bolt:prod:raw", kb.BuildKey("raw"))
}
