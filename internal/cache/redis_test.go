package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrealmaoglu/trailium/internal/config"
)

func TestNewRedisClient_Unreachable(t *testing.T) {
	SetRedisClient(nil)

	rc, err := NewRedisClient(config.RedisConfig{Host: "127.0.0.1", Port: "1"})
	require.Error(t, err)
	assert.Nil(t, rc)
	assert.Nil(t, GetRedisClient(), "failed connection must not replace the global client")
}

func TestRedisClient_NilCloseIsSafe(t *testing.T) {
	var rc *RedisClient
	assert.NoError(t, rc.Close())
}
