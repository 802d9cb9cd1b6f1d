package middleware

import (
	"context"
	"strings"

	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/pkg/authenticator"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/router"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

// Authenticate resolves the sender from the bearer access token issued by
// wallet login.
func Authenticate(tokenEngine authenticator.TokenEngine[model.AccessToken]) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		req := xcontext.HTTPRequest(ctx)
		auth, token, found := strings.Cut(req.Header.Get("Authorization"), " ")
		if !found || auth != "Bearer" || token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		info, err := tokenEngine.Verify(token)
		if err != nil || info.Address == "" {
			xcontext.Logger(ctx).Debugf("Invalid access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.Address), nil
	}
}
