package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name string `json:"name" form:"name"`
}

type echoResponse struct {
	Greeting string `json:"greeting"`
	Sender   string `json:"sender,omitempty"`
}

type senderKey struct{}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	switch req.Name {
	case "":
		return nil, errorx.New(errorx.BadRequest, "Name is required")
	case "panic":
		return nil, errors.New("internal failure")
	}

	sender, _ := ctx.Value(senderKey{}).(string)
	return &echoResponse{Greeting: "hello " + req.Name, Sender: sender}, nil
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) envelope {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func Test_Router_Envelope(t *testing.T) {
	r := New(context.Background())
	GET(r, "/echo", echo)
	POST(r, "/echo", echo)

	resp := doRequest(t, r.Handler(), http.MethodGet, "/echo?name=alice", "")
	require.Equal(t, errorx.Code(0), resp.Code)
	require.Equal(t, map[string]any{"greeting": "hello alice"}, resp.Data)

	resp = doRequest(t, r.Handler(), http.MethodPost, "/echo", `{"name":"bob"}`)
	require.Equal(t, errorx.Code(0), resp.Code)
	require.Equal(t, map[string]any{"greeting": "hello bob"}, resp.Data)

	resp = doRequest(t, r.Handler(), http.MethodPost, "/echo", "")
	require.Equal(t, errorx.BadRequest, resp.Code)
	require.Equal(t, "Name is required", resp.Error)

	resp = doRequest(t, r.Handler(), http.MethodPost, "/echo", `{"name":`)
	require.Equal(t, errorx.BadRequest, resp.Code)

	resp = doRequest(t, r.Handler(), http.MethodPost, "/echo", `{"name":"panic"}`)
	require.Equal(t, errorx.Unknown.Code, resp.Code)
	require.Equal(t, errorx.Unknown.Message, resp.Error)
	require.Nil(t, resp.Data)
}

func Test_Router_Middlewares(t *testing.T) {
	r := New(context.Background())

	var closed []error
	r.AddCloser(func(ctx context.Context) {
		closed = append(closed, xcontext.Error(ctx))
	})

	authRouter := r.Branch()
	authRouter.Before(func(ctx context.Context) (context.Context, error) {
		sender := xcontext.HTTPRequest(ctx).Header.Get("X-Sender")
		if sender == "" {
			return nil, errorx.New(errorx.Unauthenticated, "No sender")
		}
		return context.WithValue(ctx, senderKey{}, sender), nil
	})

	var afterResp any
	authRouter.After(func(ctx context.Context) (context.Context, error) {
		afterResp = xcontext.Response(ctx)
		return nil, nil
	})

	POST(authRouter, "/private", echo)
	POST(r, "/public", echo)

	resp := doRequest(t, r.Handler(), http.MethodPost, "/private", `{"name":"alice"}`)
	require.Equal(t, errorx.Unauthenticated, resp.Code)
	require.Nil(t, afterResp)

	req := httptest.NewRequest(http.MethodPost, "/private", strings.NewReader(`{"name":"alice"}`))
	req.Header.Set("X-Sender", "carol")
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	var ok envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	require.Equal(t, errorx.Code(0), ok.Code)
	require.Equal(t, map[string]any{"greeting": "hello alice", "sender": "carol"}, ok.Data)
	require.Equal(t, &echoResponse{Greeting: "hello alice", Sender: "carol"}, afterResp)

	// The branch middleware does not apply to the parent router.
	resp = doRequest(t, r.Handler(), http.MethodPost, "/public", `{"name":"dave"}`)
	require.Equal(t, errorx.Code(0), resp.Code)

	require.Len(t, closed, 3)
	require.True(t, errorx.Is(closed[0], errorx.Unauthenticated))
	require.NoError(t, closed[1])
	require.NoError(t, closed[2])
}
