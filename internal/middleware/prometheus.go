package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/questx-lab/petquest/internal/common"
	"github.com/questx-lab/petquest/pkg/router"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

// Prometheus counts requests per path and code, and observes their latency
// when WithStartTime ran first.
func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		path := xcontext.HTTPRequest(ctx).URL.Path
		code := strconv.Itoa(int(statusCode(xcontext.Error(ctx))))

		common.PromCounters[common.HTTPRequestTotal].WithLabelValues(path, code).Inc()
		if start := xcontext.StartTime(ctx); !start.IsZero() {
			common.PromHistograms[common.HTTPRequestDurationSeconds].
				WithLabelValues(path, code).
				Observe(time.Since(start).Seconds())
		}
	}
}
