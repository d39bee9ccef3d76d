// Package binder converts individual path and query parameters to typed
// values, reporting conversion failures as type mismatches.
package binder

import (
	"encoding"
	"reflect"
	"time"

	domainerrors "sba/internal/domain/errors"
	"sba/internal/errors"

	"github.com/labstack/echo/v4"
)

// PathParam converts the named path parameter to T.
func PathParam[T any](c echo.Context, name string) (T, error) {
	return bind[T](echo.PathParamsBinder(c), name, c.Param(name))
}

// QueryParam converts the named query parameter to T. An absent parameter
// yields the zero value.
func QueryParam[T any](c echo.Context, name string) (T, error) {
	return bind[T](echo.QueryParamsBinder(c), name, c.QueryParam(name))
}

// QueryParamOr is QueryParam with a fallback for an absent or empty parameter.
func QueryParamOr[T any](c echo.Context, name string, fallback T) (T, error) {
	if c.QueryParam(name) == "" {
		return fallback, nil
	}

	return QueryParam[T](c, name)
}

func bind[T any](b *echo.ValueBinder, name, raw string) (T, error) {
	var dst T

	switch p := any(&dst).(type) {
	case *string:
		b.String(name, p)
	case *int:
		b.Int(name, p)
	case *int64:
		b.Int64(name, p)
	case *uint:
		b.Uint(name, p)
	case *float64:
		b.Float64(name, p)
	case *bool:
		b.Bool(name, p)
	case *time.Duration:
		b.Duration(name, p)
	case encoding.TextUnmarshaler:
		b.TextUnmarshaler(name, p)
	default:
		return dst, errors.Errorf("binder: unsupported parameter type %T", dst)
	}

	if err := b.BindError(); err != nil {
		var zero T

		return zero, &domainerrors.TypeMismatchError{
			Name:         name,
			RequiredType: reflect.TypeFor[T](),
			Value:        raw,
			Cause:        err,
		}
	}

	return dst, nil
}
