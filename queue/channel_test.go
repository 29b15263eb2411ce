// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChannelSendReceive(t *testing.T) {
	require := require.New(t)
	ch := NewChannel[int](2)
	require.NoError(ch.Send(1))
	require.NoError(ch.Send(2))

	v, err := ch.Receive()
	require.NoError(err)
	require.Equal(1, v)
}

func TestChannelLenReflectsBufferedCount(t *testing.T) {
	require := require.New(t)
	ch := NewChannel[int](3)
	require.Equal(0, ch.Len())
	require.NoError(ch.Send(1))
	require.NoError(ch.Send(2))
	require.Equal(2, ch.Len())

	_, err := ch.Receive()
	require.NoError(err)
	require.Equal(1, ch.Len())
}

func TestChannelSendBlocksUntilRoom(t *testing.T) {
	require := require.New(t)
	ch := NewChannel[int](1)
	require.NoError(ch.Send(1))

	done := make(chan struct{})
	go func() {
		require.NoError(ch.Send(2))
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("send should have blocked with a full buffer")
	case <-time.After(20 * time.Millisecond):
	}

	_, err := ch.Receive()
	require.NoError(err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send never unblocked after receive")
	}
}

func TestChannelCloseDrainsBufferedThenRejects(t *testing.T) {
	require := require.New(t)
	ch := NewChannel[int](2)
	require.NoError(ch.Send(1))
	ch.Close()

	require.ErrorIs(ch.Send(2), ErrClosed)

	v, err := ch.Receive()
	require.NoError(err)
	require.Equal(1, v)

	_, err = ch.Receive()
	require.ErrorIs(err, ErrClosed)
}
