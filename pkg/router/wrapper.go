package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	// Middlewares added after the route is registered are ignored.
	befores := router.befores
	afters := router.afters
	closers := router.closers

	return func(c *gin.Context) {
		ctx := xcontext.WithHTTPRequest(router.ctx, c.Request)

		defer func() {
			for _, closer := range closers {
				closer(ctx)
			}
		}()

		ctx, err := serve(ctx, c, method, befores, afters, handler)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			c.JSON(http.StatusOK, toEnvelope(nil, err))
			return
		}

		c.JSON(http.StatusOK, toEnvelope(xcontext.Response(ctx), nil))
	}
}

func serve[Request, Response any](
	ctx context.Context,
	c *gin.Context,
	method string,
	befores, afters []MiddlewareFunc,
	handler HandlerFunc[Request, Response],
) (context.Context, error) {
	var err error
	for _, m := range befores {
		if ctx, err = runMiddleware(ctx, m); err != nil {
			return ctx, err
		}
	}

	req := new(Request)
	if err := bind(c, method, req); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
		return ctx, errorx.New(errorx.BadRequest, "Invalid request")
	}

	resp, err := handler(ctx, req)
	if err != nil {
		return ctx, err
	}
	ctx = xcontext.WithResponse(ctx, resp)

	for _, m := range afters {
		if ctx, err = runMiddleware(ctx, m); err != nil {
			return ctx, err
		}
	}

	return ctx, nil
}

func runMiddleware(ctx context.Context, m MiddlewareFunc) (context.Context, error) {
	newCtx, err := m(ctx)
	if newCtx == nil {
		newCtx = ctx
	}

	return newCtx, err
}

func bind(c *gin.Context, method string, req any) error {
	if method == http.MethodGet {
		return c.ShouldBindQuery(req)
	}

	if c.Request.ContentLength == 0 {
		return nil
	}

	return c.ShouldBindJSON(req)
}
