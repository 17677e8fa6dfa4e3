//go:build integration

package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/UnknownOlympus/trackbus/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestValkey(t *testing.T) {
	ctx := t.Context()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "valkey/valkey:8-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	vk, err := cache.NewValkey(addr)
	require.NoError(t, err)
	defer vk.Close()

	require.NoError(t, vk.Ping(ctx))

	t.Run("miss", func(t *testing.T) {
		data, err := vk.Get(ctx, "trackbus:route:absent:stops")
		require.ErrorIs(t, err, cache.ErrMiss)
		assert.Nil(t, data)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, vk.Set(ctx, "k", []byte(`[{"id":1}]`), time.Minute))

		data, err := vk.Get(ctx, "k")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":1}]`, string(data))
	})

	t.Run("no expiry", func(t *testing.T) {
		require.NoError(t, vk.Set(ctx, "forever", []byte("x"), 0))

		data, err := vk.Get(ctx, "forever")
		require.NoError(t, err)
		assert.Equal(t, []byte("x"), data)
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, vk.Set(ctx, "short", []byte("x"), time.Second))

		require.Eventually(t, func() bool {
			_, err := vk.Get(ctx, "short")
			return errors.Is(err, cache.ErrMiss)
		}, 5*time.Second, 100*time.Millisecond)
	})
}
