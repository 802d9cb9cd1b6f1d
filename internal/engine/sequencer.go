package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/petquest/internal/common"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"github.com/questx-lab/petquest/pkg/xredis"
)

const sequencerRetryInterval = 20 * time.Millisecond

// Sequencer gives messages a total order. Inside one process a mutex is
// enough, replicas sharing the same database also hold a redis lock.
type Sequencer struct {
	mu          sync.Mutex
	redisClient xredis.Client
	ttl         time.Duration
}

// NewSequencer accepts a nil redis client for a single replica deployment.
func NewSequencer(redisClient xredis.Client, ttl time.Duration) *Sequencer {
	return &Sequencer{redisClient: redisClient, ttl: ttl}
}

// Acquire blocks until the caller is the only one applying a message. The
// returned function releases the sequencer.
func (s *Sequencer) Acquire(ctx context.Context) (func(), error) {
	s.mu.Lock()
	if s.redisClient == nil {
		return s.mu.Unlock, nil
	}

	token := uuid.NewString()
	for {
		ok, err := s.redisClient.SetNX(ctx, common.RedisKeySequencer, token, s.ttl)
		if err != nil {
			s.mu.Unlock()
			xcontext.Logger(ctx).Errorf("Cannot acquire the sequencer: %v", err)
			return nil, errorx.New(errorx.Unavailable, "Sequencer is unavailable")
		}

		if ok {
			break
		}

		select {
		case <-ctx.Done():
			s.mu.Unlock()
			return nil, errorx.New(errorx.Unavailable, "Sequencer is busy")
		case <-time.After(sequencerRetryInterval):
		}
	}

	return func() {
		defer s.mu.Unlock()

		ok, err := s.redisClient.CompareAndDel(context.Background(), common.RedisKeySequencer, token)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot release the sequencer: %v", err)
		} else if !ok {
			xcontext.Logger(ctx).Warnf("Sequencer expired before the message finished")
		}
	}, nil
}
