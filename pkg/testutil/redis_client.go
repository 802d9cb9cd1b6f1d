package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type MockRedisClient struct {
	ExistFunc         func(ctx context.Context, key string) (bool, error)
	DelFunc           func(ctx context.Context, key ...string) error
	GetFunc           func(ctx context.Context, key string) (string, error)
	SetFunc           func(ctx context.Context, key, value string, ttl time.Duration) error
	SetNXFunc         func(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	CompareAndDelFunc func(ctx context.Context, key, value string) (bool, error)
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	if m.ExistFunc != nil {
		return m.ExistFunc(ctx, key)
	}

	return false, nil
}

func (m *MockRedisClient) Del(ctx context.Context, key ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, key...)
	}

	return nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	return "", redis.Nil
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}

	return nil
}

func (m *MockRedisClient) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if m.SetNXFunc != nil {
		return m.SetNXFunc(ctx, key, value, ttl)
	}

	return true, nil
}

func (m *MockRedisClient) CompareAndDel(ctx context.Context, key, value string) (bool, error) {
	if m.CompareAndDelFunc != nil {
		return m.CompareAndDelFunc(ctx, key, value)
	}

	return true, nil
}

// NewMemoryRedisClient returns a MockRedisClient keeping keys in memory. TTLs
// are ignored.
func NewMemoryRedisClient() *MockRedisClient {
	var mu sync.Mutex
	store := map[string]string{}

	return &MockRedisClient{
		ExistFunc: func(_ context.Context, key string) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			_, ok := store[key]
			return ok, nil
		},
		DelFunc: func(_ context.Context, keys ...string) error {
			mu.Lock()
			defer mu.Unlock()
			for _, key := range keys {
				delete(store, key)
			}
			return nil
		},
		GetFunc: func(_ context.Context, key string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			value, ok := store[key]
			if !ok {
				return "", redis.Nil
			}
			return value, nil
		},
		SetFunc: func(_ context.Context, key, value string, _ time.Duration) error {
			mu.Lock()
			defer mu.Unlock()
			store[key] = value
			return nil
		},
		SetNXFunc: func(_ context.Context, key, value string, _ time.Duration) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if _, ok := store[key]; ok {
				return false, nil
			}
			store[key] = value
			return true, nil
		},
		CompareAndDelFunc: func(_ context.Context, key, value string) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if store[key] != value {
				return false, nil
			}
			delete(store, key)
			return true, nil
		},
	}
}
