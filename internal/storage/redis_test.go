package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobper/jobper-dashboard/internal/config"
)

func setupTestRedis(t *testing.T) *Redis {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	s, err := NewRedis(context.Background(), config.RedisConnection{
		AddressRedis: mr.Addr(),
	}, newNoopLogger())
	require.NoError(t, err)
	return s
}

func TestRedis_Contract(t *testing.T) {
	storeContract(t, setupTestRedis(t))
}

func TestRedis_CorruptUserDegradesToNil(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	s, err := NewRedis(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()}, newNoopLogger())
	require.NoError(t, err)

	require.NoError(t, mr.Set(KeyUser, "{broken"))
	assert.Nil(t, s.User())
}
