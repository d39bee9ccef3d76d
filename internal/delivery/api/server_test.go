package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sba/config"
	apimiddleware "sba/internal/delivery/api/middleware"
	"sba/internal/delivery/api/router"
	"sba/internal/delivery/api/router/handler"
	"sba/internal/delivery/api/validator"
	deliverycontext "sba/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

type envelope struct {
	Code    int             `json:"code"`
	Message *string         `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestEcho(t *testing.T, configure func(cfg *config.Config)) (*echo.Echo, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.TestRoutes = &config.TestRoutesConfig{Enabled: true}
	if configure != nil {
		configure(cfg)
	}

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	v, err := validator.New()
	require.NoError(t, err)

	testHandler, err := handler.NewTestHandler(handler.TestHandlerParams{Validator: v})
	require.NoError(t, err)

	e := newEcho(ServerParams{
		Cfg:             cfg,
		Logger:          logger,
		Validator:       v,
		ErrorMiddleware: apimiddleware.NewErrorMiddleware(logger, cfg),
		RouterParams: router.RouterParams{
			TestHandler: testHandler,
			Config:      cfg,
		},
	})

	return e, logs
}

func do(t *testing.T, e *echo.Echo, method, target string, body io.Reader) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.Code)

	return rec, env
}

func messages(t *testing.T, env envelope) []string {
	t.Helper()

	var out []string
	require.NoError(t, json.Unmarshal(env.Data, &out))

	return out
}

func TestServer_Health(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	rec, env := do(t, e, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, env.Message)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, rec.Header().Get(deliverycontext.HeaderXRequestID))
}

func TestServer_ValidationErrors(t *testing.T) {
	e, logs := newTestEcho(t, nil)

	body := `{"email":"not-an-email","password":"a","confirm_password":"b"}`
	rec, env := do(t, e, http.MethodPost, "/test/validation", strings.NewReader(body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, env.Message)
	assert.Equal(t, []string{
		"name: name is a required field",
		"email: email must be a valid email address",
		"sampleRequest: passwords must match",
	}, messages(t, env))
	assert.Empty(t, logs.String())
}

func TestServer_ValidationPasses(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	body := `{"name":"Ada","email":"ada@example.com","age":36,"password":"a","confirm_password":"a"}`
	rec, env := do(t, e, http.MethodPost, "/test/validation", strings.NewReader(body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Ada","email":"ada@example.com","age":36}`, string(env.Data))
}

func TestServer_BodyTypeMismatch(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	rec, env := do(t, e, http.MethodPost, "/test/validation", strings.NewReader(`{"age":"old"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Message)
	assert.Equal(t, "age should be of type int", *env.Message)
	assert.Empty(t, env.Data)
}

func TestServer_MalformedBody(t *testing.T) {
	e, logs := newTestEcho(t, nil)

	rec, env := do(t, e, http.MethodPost, "/test/validation", strings.NewReader(`{"name":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Message)
	assert.NotEmpty(t, *env.Message)
	assert.Contains(t, logs.String(), "Request rejected")
}

func TestServer_ConstraintViolation(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	rec, env := do(t, e, http.MethodGet, "/test/constraint?limit=500", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := messages(t, env)
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "sba/internal/delivery/api/router/handler.TestHandler testConstraint.limit: "), got[0])
}

func TestServer_ConstraintParams(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	rec, env := do(t, e, http.MethodGet, "/test/constraint", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"limit":10}`, string(env.Data))

	rec, env = do(t, e, http.MethodGet, "/test/constraint?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Message)
	assert.Equal(t, "limit should be of type int", *env.Message)
}

func TestServer_PathTypeMismatch(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	rec, env := do(t, e, http.MethodGet, "/test/typed/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Message)
	assert.Equal(t, "age should be of type int", *env.Message)

	rec, env = do(t, e, http.MethodGet, "/test/typed/30", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"age":30}`, string(env.Data))
}

func TestServer_BusinessError(t *testing.T) {
	e, logs := newTestEcho(t, nil)

	rec, env := do(t, e, http.MethodGet, "/test/business", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Message)
	assert.Equal(t, "invalid state", *env.Message)
	assert.Empty(t, env.Data)

	requestID := rec.Header().Get(deliverycontext.HeaderXRequestID)
	assert.Contains(t, logs.String(), `"request_id":"`+requestID+`"`)

	_, env = do(t, e, http.MethodGet, "/test/business?reason=order+closed", nil)
	require.NotNil(t, env.Message)
	assert.Equal(t, "order closed", *env.Message)
}

func TestServer_UnexpectedError(t *testing.T) {
	e, logs := newTestEcho(t, nil)

	rec, env := do(t, e, http.MethodGet, "/test/unexpected", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, env.Message)
	assert.Equal(t, "unexpected failure in /test/unexpected", *env.Message)
	assert.Contains(t, logs.String(), "test_handler.go")
}

func TestServer_Panic(t *testing.T) {
	e, _ := newTestEcho(t, nil)

	rec, env := do(t, e, http.MethodGet, "/test/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, env.Message)
	assert.Equal(t, "diagnostic panic", *env.Message)
}

func TestServer_HideInternalMessage(t *testing.T) {
	e, _ := newTestEcho(t, func(cfg *config.Config) {
		cfg.HTTP.Errors.HideInternalMessage = true
		cfg.HTTP.Errors.GenericMessage = "Something went wrong"
	})

	_, env := do(t, e, http.MethodGet, "/test/panic", nil)
	require.NotNil(t, env.Message)
	assert.Equal(t, "Something went wrong", *env.Message)
}

func TestServer_InfrastructureErrors(t *testing.T) {
	e, _ := newTestEcho(t, func(cfg *config.Config) {
		cfg.HTTP.MaxRequestBodySize = "1KB"
	})

	tests := []struct {
		name        string
		method      string
		target      string
		body        io.Reader
		wantMessage string
	}{
		{name: "unknown route", method: http.MethodGet, target: "/missing", wantMessage: "Not Found"},
		{name: "method not allowed", method: http.MethodDelete, target: "/health", wantMessage: "Method Not Allowed"},
		{
			name:        "body too large",
			method:      http.MethodPost,
			target:      "/test/validation",
			body:        strings.NewReader(`{"name":"` + strings.Repeat("a", 2048) + `"}`),
			wantMessage: "Request Entity Too Large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, e, tt.method, tt.target, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, env.Message)
			assert.Equal(t, tt.wantMessage, *env.Message)
		})
	}
}

func TestServer_TestRoutesDisabled(t *testing.T) {
	e, _ := newTestEcho(t, func(cfg *config.Config) {
		cfg.TestRoutes.Enabled = false
	})

	rec, env := do(t, e, http.MethodGet, "/test/business", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Message)
	assert.Equal(t, "Not Found", *env.Message)
}

func TestNewServer_RegistersShutdownHook(t *testing.T) {
	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "100KB"

	v, err := validator.New()
	require.NoError(t, err)
	testHandler, err := handler.NewTestHandler(handler.TestHandlerParams{Validator: v})
	require.NoError(t, err)

	lc := fxtest.NewLifecycle(t)
	srv, err := NewServer(ServerParams{
		Lc:              lc,
		Cfg:             cfg,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		Validator:       v,
		ErrorMiddleware: apimiddleware.NewErrorMiddleware(slog.Default(), cfg),
		RouterParams:    router.RouterParams{TestHandler: testHandler, Config: cfg},
	})
	require.NoError(t, err)
	require.NotNil(t, srv)

	lc.RequireStart()
	lc.RequireStop()
}
