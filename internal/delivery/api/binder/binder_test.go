package binder

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainerrors "sba/internal/domain/errors"
	"sba/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string, names, values []string) echo.Context {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	return c
}

func TestPathParam_Int(t *testing.T) {
	c := newContext("/", []string{"age"}, []string{"42"})

	age, err := PathParam[int](c, "age")
	require.NoError(t, err)
	assert.Equal(t, 42, age)
}

func TestPathParam_IntMismatch(t *testing.T) {
	c := newContext("/", []string{"age"}, []string{"abc"})

	age, err := PathParam[int](c, "age")
	require.Error(t, err)
	assert.Zero(t, age)

	var mismatch *domainerrors.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "age", mismatch.Name)
	assert.Equal(t, "abc", mismatch.Value)
	assert.Equal(t, "age should be of type int", mismatch.Error())
	assert.Error(t, mismatch.Cause)
}

func TestPathParam_UUID(t *testing.T) {
	id := uuid.New()
	c := newContext("/", []string{"id"}, []string{id.String()})

	got, err := PathParam[uuid.UUID](c, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestPathParam_UUIDMismatch(t *testing.T) {
	c := newContext("/", []string{"id"}, []string{"not-a-uuid"})

	_, err := PathParam[uuid.UUID](c, "id")
	require.Error(t, err)
	assert.Equal(t, "id should be of type github.com/google/uuid.UUID", err.Error())
}

func TestQueryParam(t *testing.T) {
	c := newContext("/?limit=25&ratio=0.5&verbose=true&wait=3s&name=ada", nil, nil)

	limit, err := QueryParam[int64](c, "limit")
	require.NoError(t, err)
	assert.Equal(t, int64(25), limit)

	ratio, err := QueryParam[float64](c, "ratio")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	verbose, err := QueryParam[bool](c, "verbose")
	require.NoError(t, err)
	assert.True(t, verbose)

	wait, err := QueryParam[time.Duration](c, "wait")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, wait)

	name, err := QueryParam[string](c, "name")
	require.NoError(t, err)
	assert.Equal(t, "ada", name)

	missing, err := QueryParam[uint](c, "missing")
	require.NoError(t, err)
	assert.Zero(t, missing)
}

func TestQueryParam_BoolMismatch(t *testing.T) {
	c := newContext("/?verbose=maybe", nil, nil)

	_, err := QueryParam[bool](c, "verbose")
	assert.EqualError(t, err, "verbose should be of type bool")
}

func TestQueryParamOr(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    int
		wantErr string
	}{
		{name: "absent uses fallback", target: "/", want: 10},
		{name: "empty uses fallback", target: "/?limit=", want: 10},
		{name: "present", target: "/?limit=7", want: 7},
		{name: "mismatch", target: "/?limit=seven", wantErr: "limit should be of type int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContext(tt.target, nil, nil)

			got, err := QueryParamOr(c, "limit", 10)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBind_UnsupportedType(t *testing.T) {
	c := newContext("/?tags=a", nil, nil)

	_, err := QueryParam[[]string](c, "tags")
	require.Error(t, err)

	var mismatch *domainerrors.TypeMismatchError
	assert.False(t, errors.As(err, &mismatch))
}
