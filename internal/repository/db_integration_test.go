//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketplace-delivery/internal/repository"
)

func TestNewPool_Success(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := repository.NewPool(ctx, tcDSN, repository.PoolConfig{MaxConns: 2})
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, repository.Migrate(ctx, pool), "schema must be re-appliable")
}

func TestNewPool_InvalidDSN(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := repository.NewPool(ctx, "not-a-valid-dsn", repository.PoolConfig{})
	require.Error(t, err)
}
