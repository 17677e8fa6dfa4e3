package cache_test

import (
	"testing"

	"github.com/UnknownOlympus/trackbus/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValkey_Unreachable(t *testing.T) {
	vk, err := cache.NewValkey("127.0.0.1:1")

	require.ErrorContains(t, err, "valkey connect")
	assert.Nil(t, vk)
}
