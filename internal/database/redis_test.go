package database

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client, err := ConnectRedis(context.Background(), RedisOptions{URL: "redis://" + server.Addr() + "/0"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.Equal(t, 5*time.Second, client.Options().DialTimeout)

	_, err = ConnectRedis(context.Background(), RedisOptions{})
	require.Error(t, err)

	_, err = ConnectRedis(context.Background(), RedisOptions{URL: "not a url"})
	require.Error(t, err)

	server.Close()
	_, err = ConnectRedis(context.Background(), RedisOptions{URL: "redis://" + server.Addr(), DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
}
