package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_Sequencer_Acquire(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := testutil.NewMemoryRedisClient()

	// Two replicas sharing one redis.
	first := NewSequencer(redisClient, time.Minute)
	second := NewSequencer(redisClient, time.Minute)

	release, err := first.Acquire(ctx)
	require.NoError(t, err)

	timeoutCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = second.Acquire(timeoutCtx)
	require.True(t, errorx.Is(err, errorx.Unavailable), err)

	release()

	release, err = second.Acquire(ctx)
	require.NoError(t, err)
	release()
}

func Test_Sequencer_Acquire_RedisError(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := &testutil.MockRedisClient{
		SetNXFunc: func(context.Context, string, string, time.Duration) (bool, error) {
			return false, errors.New("connection refused")
		},
	}

	sequencer := NewSequencer(redisClient, time.Minute)
	_, err := sequencer.Acquire(ctx)
	require.True(t, errorx.Is(err, errorx.Unavailable), err)

	// The local mutex is released on failure.
	sequencer.redisClient = nil
	release, err := sequencer.Acquire(ctx)
	require.NoError(t, err)
	release()
}

func Test_Sequencer_Acquire_Local(t *testing.T) {
	ctx := testutil.MockContext()
	sequencer := NewSequencer(nil, 0)

	release, err := sequencer.Acquire(ctx)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		release, err := sequencer.Acquire(ctx)
		if err == nil {
			release()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("sequencer acquired twice")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	<-acquired
}
