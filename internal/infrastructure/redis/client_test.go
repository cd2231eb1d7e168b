package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewClientErrors(t *testing.T) {
	down := miniredis.RunT(t)
	downURL := "redis://" + down.Addr()
	down.Close()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	up := miniredis.RunT(t)

	tests := []struct {
		name string
		ctx  context.Context
		url  string
	}{
		{name: "invalid url", ctx: context.Background(), url: "://bad-url"},
		{name: "server down", ctx: context.Background(), url: downURL},
		{name: "cancelled context", ctx: cancelled, url: "redis://" + up.Addr()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.ctx, tt.url)
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}
