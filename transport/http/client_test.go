package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/workforce/auth/session"
	"github.com/kochabx/workforce/auth/store"
	"github.com/kochabx/workforce/auth/token/tokentest"
	"github.com/kochabx/workforce/core/rate"
	"github.com/kochabx/workforce/errors"
	"github.com/kochabx/workforce/notice"
	"github.com/kochabx/workforce/transport/http/metrics"
)

type backend struct {
	*httptest.Server
	lastAuth  atomic.Value
	lastReqID atomic.Value
}

// newBackend 按路径返回固定状态码和响应体
func newBackend(t *testing.T) *backend {
	b := &backend{}
	mux := http.NewServeMux()
	reply := func(status int, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			b.lastAuth.Store(r.Header.Get("Authorization"))
			b.lastReqID.Store(r.Header.Get(HeaderRequestID))
			w.Header().Set("Content-Type", ContentTypeJSON)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("GET /api/employees", func(w http.ResponseWriter, r *http.Request) {
		b.lastAuth.Store(r.Header.Get("Authorization"))
		b.lastReqID.Store(r.Header.Get(HeaderRequestID))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content":       []map[string]any{{"id": 1, "name": "Ada"}},
			"totalElements": 1,
			"query":         r.URL.RawQuery,
		})
	})
	mux.HandleFunc("POST /api/echo", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		in["contentType"] = r.Header.Get("Content-Type")
		_ = json.NewEncoder(w).Encode(in)
	})
	mux.HandleFunc("DELETE /api/employees/1", reply(http.StatusNoContent, ""))
	mux.HandleFunc("GET /api/unauthorized", reply(http.StatusUnauthorized, `{"message":"Full authentication is required"}`))
	mux.HandleFunc("GET /api/forbidden", reply(http.StatusForbidden, `{"message":"Access Denied"}`))
	mux.HandleFunc("GET /api/principal", reply(http.StatusNotFound, `{"message":"User not found with username: bob"}`))
	mux.HandleFunc("GET /api/missing", reply(http.StatusNotFound, `{"message":"Project not found"}`))
	mux.HandleFunc("GET /api/broken", reply(http.StatusInternalServerError, `not json`))
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

type fixture struct {
	backend *backend
	ctrl    *session.Controller
	notes   *notice.Recorder
	client  *Client
	metrics *metrics.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	f := &fixture{
		backend: newBackend(t),
		notes:   notice.NewRecorder(),
		metrics: metrics.NewClient(prometheus.NewRegistry()),
	}
	f.ctrl = session.New(store.NewMemory(), session.WithClock(clock))
	t.Cleanup(func() { f.ctrl.Close() })

	policy := DefaultPolicy()
	cli, err := New(f.backend.URL+"/api/",
		WithPolicy(policy),
		WithMetrics(f.metrics),
		WithRequestInterceptors(Bearer(f.ctrl), RequestID()),
		WithResponseInterceptors(SessionGuard(f.ctrl, f.notes, policy, f.metrics)),
	)
	require.NoError(t, err)
	f.client = cli

	require.NoError(t, f.ctrl.Login(context.Background(), tokentest.Mint("bob", clock.Now().Add(time.Hour), "USER")))
	return f
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("localhost:8888")
	assert.Error(t, err)
	_, err = New("://")
	assert.Error(t, err)
}

func TestURL(t *testing.T) {
	cli, err := New("http://localhost:8888/api/")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8888/api", cli.BaseURL())
	assert.Equal(t, "http://localhost:8888/api/employees?page=0&size=10&sort=name%2Casc",
		cli.URL("/employees", url.Values{"page": {"0"}, "size": {"10"}, "sort": {"name,asc"}}))
	assert.Equal(t, "http://localhost:8888/api/projects/employee/3", cli.URL("projects/employee/3", nil))
}

func TestBearerAttached(t *testing.T) {
	f := newFixture(t)

	var page struct {
		Content       []map[string]any `json:"content"`
		TotalElements int              `json:"totalElements"`
		Query         string           `json:"query"`
	}
	err := f.client.Get(context.Background(), "/employees", url.Values{"sort": {"name,desc"}}, &page)
	require.NoError(t, err)

	assert.Equal(t, "Bearer "+f.ctrl.Token(), f.backend.lastAuth.Load())
	assert.NotEmpty(t, f.backend.lastReqID.Load())
	assert.Equal(t, 1, page.TotalElements)
	assert.Equal(t, "sort=name%2Cdesc", page.Query)
}

func TestAnonymousRequestUnmodified(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Logout(context.Background()))

	require.NoError(t, f.client.Get(context.Background(), "/employees", nil, nil))
	assert.Equal(t, "", f.backend.lastAuth.Load())
}

func TestJSONBody(t *testing.T) {
	f := newFixture(t)

	var out map[string]any
	require.NoError(t, f.client.Post(context.Background(), "/echo", map[string]any{"name": "Ada"}, &out))
	assert.Equal(t, "Ada", out["name"])
	assert.Equal(t, ContentTypeJSON, out["contentType"])

	require.NoError(t, f.client.Delete(context.Background(), "/employees/1"))
}

func TestUnauthorizedForcesLogoutOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.client.Get(ctx, "/unauthorized", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, errors.KindUnauthorized, errors.Kind(err))

	assert.Equal(t, session.Anonymous, f.ctrl.Session().State())
	assert.Equal(t, []string{MsgSessionExpired}, f.notes.Messages())
	assert.Equal(t, []string{"/login"}, f.notes.Redirects())

	// 迟到的 401 仍然跳转但不重复提示
	err = f.client.Get(ctx, "/unauthorized", nil, nil)
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, []string{MsgSessionExpired}, f.notes.Messages())
	assert.Equal(t, []string{"/login", "/login"}, f.notes.Redirects())
}

func TestForbiddenNotifiesOnly(t *testing.T) {
	f := newFixture(t)

	err := f.client.Get(context.Background(), "/forbidden", nil, nil)
	assert.True(t, errors.IsForbidden(err))
	assert.Equal(t, session.Authenticated, f.ctrl.Session().State())
	assert.Equal(t, []string{MsgForbidden}, f.notes.Messages())
	assert.Empty(t, f.notes.Redirects())
}

func TestPrincipalMissingForcesLogout(t *testing.T) {
	f := newFixture(t)

	err := f.client.Get(context.Background(), "/principal", nil, nil)
	assert.Equal(t, 404, errors.Code(err))
	assert.Equal(t, errors.KindNotFoundPrincipal, errors.Kind(err))
	assert.Equal(t, session.Anonymous, f.ctrl.Session().State())
	assert.Equal(t, []string{MsgPrincipalNotFound}, f.notes.Messages())
	assert.Equal(t, []string{"/login"}, f.notes.Redirects())
}

func TestOtherErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.client.Get(ctx, "/missing", nil, nil)
	assert.Equal(t, 404, errors.Code(err))
	assert.Empty(t, errors.Kind(err))
	ge := errors.FromError(err)
	assert.Equal(t, "Project not found", ge.Message)

	err = f.client.Get(ctx, "/broken", nil, nil)
	assert.Equal(t, 500, errors.Code(err))
	assert.Equal(t, "Internal Server Error", errors.FromError(err).Message)

	assert.Equal(t, session.Authenticated, f.ctrl.Session().State())
	assert.Empty(t, f.notes.Messages())
}

func TestNetworkError(t *testing.T) {
	f := newFixture(t)
	f.backend.Close()

	err := f.client.Get(context.Background(), "/employees", nil, nil)
	require.Error(t, err)
	assert.Equal(t, errors.NetworkCode, errors.Code(err))
	assert.Equal(t, errors.KindNetwork, errors.Kind(err))
	assert.Equal(t, session.Authenticated, f.ctrl.Session().State())
}

func TestTokenFunc(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, Bearer(TokenFunc(func() string { return "" }))(req))
	assert.Empty(t, req.Header.Get("Authorization"))

	require.NoError(t, Bearer(TokenFunc(func() string { return "abc" }))(req))
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))

	req.Header.Set(HeaderRequestID, "fixed")
	require.NoError(t, RequestID()(req))
	assert.Equal(t, "fixed", req.Header.Get(HeaderRequestID))
}

func TestRateLimitCanceled(t *testing.T) {
	lim := rate.NewTokenBucketLimiter(1, 50)
	require.True(t, lim.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	assert.ErrorIs(t, RateLimit(lim)(req), context.Canceled)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NoError(t, RateLimit(lim)(req))
}
