package remotemandel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

func TestLocalGroupSendRecv(t *testing.T) {
	g := NewLocalGroup(3, 4)
	assert.Equal(t, 3, g.Size())
	ctx := context.Background()

	ep0, ep1, ep2 := g.Endpoint(0), g.Endpoint(1), g.Endpoint(2)
	assert.Equal(t, 1, ep1.Rank())
	assert.Equal(t, 3, ep1.Size())

	require.NoError(t, ep1.Send(ctx, Root, []byte("a1")))
	require.NoError(t, ep2.Send(ctx, Root, []byte("b1")))
	require.NoError(t, ep1.Send(ctx, Root, []byte("a2")))

	// frames from other sources are held back in arrival order
	env, err := ep0.Recv(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, Envelope{Source: 2, Frame: []byte("b1")}, env)

	env, err = ep0.Recv(ctx, AnySource)
	require.NoError(t, err)
	assert.Equal(t, Envelope{Source: 1, Frame: []byte("a1")}, env)

	env, err = ep0.Recv(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Envelope{Source: 1, Frame: []byte("a2")}, env)
}

func TestLocalGroupInvalidDestination(t *testing.T) {
	g := NewLocalGroup(2, 1)
	ctx := context.Background()
	assert.Error(t, g.Endpoint(1).Send(ctx, 1, nil))
	assert.Error(t, g.Endpoint(1).Send(ctx, 2, nil))
	assert.Error(t, g.Endpoint(1).Send(ctx, -1, nil))
}

func TestLocalGroupRecvCancel(t *testing.T) {
	g := NewLocalGroup(2, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Endpoint(0).Recv(ctx, AnySource)
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestLocalGroupSendBlocksWhenFull(t *testing.T) {
	g := NewLocalGroup(2, 1)
	require.NoError(t, g.Endpoint(0).Send(context.Background(), 1, []byte("x")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Equal(t, context.DeadlineExceeded, g.Endpoint(0).Send(ctx, 1, []byte("y")))
}
