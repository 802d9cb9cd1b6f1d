package middleware

import (
	"context"
	"net"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/router"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client. A client is the
// authenticated sender if any, otherwise the remote IP.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *xsync.MapOf[string, *rate.Limiter]
}

func NewRateLimiter(limit float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(limit),
		burst:    burst,
		limiters: xsync.NewMapOf[*rate.Limiter](),
	}
}

func (l *RateLimiter) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if l.limit <= 0 {
			return nil, nil
		}

		if !l.bucket(clientKey(ctx)).Allow() {
			return nil, errorx.New(errorx.TooManyRequests, "Too many requests")
		}

		return nil, nil
	}
}

// bucket returns the limiter of key, the first stored one wins a race.
func (l *RateLimiter) bucket(key string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter
	}

	limiter, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.limit, l.burst))
	return limiter
}

func clientKey(ctx context.Context) string {
	if sender := xcontext.RequestUserID(ctx); sender != "" {
		return sender
	}

	remoteAddr := xcontext.HTTPRequest(ctx).RemoteAddr
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}
