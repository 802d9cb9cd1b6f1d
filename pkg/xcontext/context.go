package xcontext

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/petquest/config"
	"github.com/questx-lab/petquest/pkg/logger"
)

type (
	configsKey       struct{}
	loggerKey        struct{}
	dbKey            struct{}
	dbTransactionKey struct{}
	requestUserIDKey struct{}
	blockTimeKey     struct{}
	messageIndexKey  struct{}
	snowFlakeKey     struct{}
	ledgerRefKey     struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg := ctx.Value(configsKey{})
	if cfg == nil {
		return config.Configs{}
	}

	return cfg.(config.Configs)
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l := ctx.Value(loggerKey{})
	if l == nil {
		return logger.NewNopLogger()
	}

	return l.(logger.Logger)
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestUserIDKey{}, id)
}

// RequestUserID returns the verified address of the message sender.
func RequestUserID(ctx context.Context) string {
	id := ctx.Value(requestUserIDKey{})
	if id == nil {
		return ""
	}

	return id.(string)
}

func WithBlockTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, blockTimeKey{}, t.UTC())
}

// BlockTime is the logical timestamp of the message being applied. All time
// gated transitions compare against it, never against the wall clock.
func BlockTime(ctx context.Context) time.Time {
	t := ctx.Value(blockTimeKey{})
	if t == nil {
		return time.Time{}
	}

	return t.(time.Time)
}

func WithMessageIndex(ctx context.Context, index uint64) context.Context {
	return context.WithValue(ctx, messageIndexKey{}, index)
}

func MessageIndex(ctx context.Context) uint64 {
	index := ctx.Value(messageIndexKey{})
	if index == nil {
		return 0
	}

	return index.(uint64)
}

func WithSnowFlake(ctx context.Context, node *snowflake.Node) context.Context {
	return context.WithValue(ctx, snowFlakeKey{}, node)
}

func SnowFlake(ctx context.Context) *snowflake.Node {
	node := ctx.Value(snowFlakeKey{})
	if node == nil {
		return nil
	}

	return node.(*snowflake.Node)
}

// WithLedgerReference tags the ledger sub-messages recorded with ctx.
func WithLedgerReference(ctx context.Context, reference string) context.Context {
	return context.WithValue(ctx, ledgerRefKey{}, reference)
}

func LedgerReference(ctx context.Context) string {
	reference, _ := ctx.Value(ledgerRefKey{}).(string)
	return reference
}
