package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/router"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

// Logger writes one line per request. Rejections carrying an errorx code are
// warnings, anything else is an error.
func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		elapsed := time.Duration(0)
		if start := xcontext.StartTime(ctx); !start.IsZero() {
			elapsed = time.Since(start)
		}

		sender := xcontext.RequestUserID(ctx)
		if sender == "" {
			sender = "-"
		}

		err := xcontext.Error(ctx)
		code := statusCode(err)
		switch {
		case err == nil:
			xcontext.Logger(ctx).Infof("%s %s | %s | %v", req.Method, req.URL.Path, sender, elapsed)
		case code == errorx.Unknown.Code:
			xcontext.Logger(ctx).Errorf("%s %s | %s | %v | %v", req.Method, req.URL.Path, sender, elapsed, err)
		default:
			xcontext.Logger(ctx).Warnf("%s %s | %s | %v | %d %s", req.Method, req.URL.Path, sender, elapsed, code, err)
		}
	}
}

// statusCode maps a handler error to the code reported to the client.
func statusCode(err error) errorx.Code {
	if err == nil {
		return 0
	}

	var errx errorx.Error
	if errors.As(err, &errx) {
		return errx.Code
	}

	return errorx.Unknown.Code
}
