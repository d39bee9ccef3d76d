package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"sba/config"
	"sba/internal/delivery/api/response"
	deliverycontext "sba/internal/delivery/context"
	domainerrors "sba/internal/domain/errors"
	"sba/internal/errors"

	"github.com/labstack/echo/v4"
)

const defaultGenericMessage = "Internal server error"

// errorKind is the class an error was resolved to; it decides logging.
type errorKind int

const (
	kindValidation errorKind = iota
	kindConstraintViolation
	kindTypeMismatch
	kindBusiness
	kindInfrastructure
	kindUnclassified
)

type resolution struct {
	kind     errorKind
	status   int
	envelope response.Envelope
}

// rule resolves err when it recognises it.
type rule func(err error) (resolution, bool)

// ErrorMiddleware translates every error escaping request handling into a
// response envelope. It holds no per-request state and is installed once as
// echo's HTTPErrorHandler.
type ErrorMiddleware struct {
	logger          *slog.Logger
	hideInternal    bool
	genericMessage  string
	rulesByPriority []rule
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger, cfg *config.Config) *ErrorMiddleware {
	m := &ErrorMiddleware{
		logger:         logger,
		hideInternal:   cfg.HTTP.Errors.HideInternalMessage,
		genericMessage: cfg.HTTP.Errors.GenericMessage,
	}
	if m.genericMessage == "" {
		m.genericMessage = defaultGenericMessage
	}

	// Most specific first; the first rule matching anywhere in the wrap chain wins.
	m.rulesByPriority = []rule{
		resolveValidation,
		resolveConstraintViolation,
		resolveTypeMismatch,
		resolveBusiness,
		resolveInfrastructure,
	}

	return m
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	res := m.resolve(err)
	m.log(c, err, res.kind)

	if c.Response().Committed {
		return
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(res.status)
	} else {
		writeErr = response.JSON(c, res.status, res.envelope)
	}
	if writeErr != nil {
		m.loggerFor(c).Error("Failed to write error response", slog.Any("error", writeErr))
	}
}

// Translate returns the status code and envelope err resolves to, without
// logging or writing anything.
func (m *ErrorMiddleware) Translate(err error) (int, response.Envelope) {
	res := m.resolve(err)

	return res.status, res.envelope
}

func (m *ErrorMiddleware) resolve(err error) resolution {
	if err != nil {
		for _, r := range m.rulesByPriority {
			if res, ok := r(err); ok {
				return res
			}
		}
	}

	message := m.genericMessage
	if !m.hideInternal {
		message = ""
		if err != nil {
			message = err.Error()
		}
	}

	return resolution{
		kind:     kindUnclassified,
		status:   http.StatusInternalServerError,
		envelope: response.NewWithMessage(http.StatusInternalServerError, message),
	}
}

func (m *ErrorMiddleware) log(c echo.Context, err error, kind errorKind) {
	req := c.Request()

	switch kind {
	case kindBusiness, kindInfrastructure:
		m.loggerFor(c).Error("Request rejected",
			slog.Any("error", err),
			slog.String("path", req.URL.Path),
			slog.String("method", req.Method),
		)
	case kindUnclassified:
		message := "<nil>"
		if err != nil {
			message = err.Error()
		}
		m.loggerFor(c).Error(message,
			slog.Any("error", err),
			slog.String("stack", fmt.Sprintf("%+v", err)),
			slog.String("path", req.URL.Path),
			slog.String("method", req.Method),
		)
	}
}

func (m *ErrorMiddleware) loggerFor(c echo.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
}

func resolveValidation(err error) (resolution, bool) {
	var verr *domainerrors.ValidationError
	if !errors.As(err, &verr) {
		return resolution{}, false
	}

	messages := make([]string, 0, len(verr.FieldErrors)+len(verr.ObjectErrors))
	for _, fe := range verr.FieldErrors {
		messages = append(messages, fe.Field+": "+fe.Message)
	}
	for _, oe := range verr.ObjectErrors {
		messages = append(messages, oe.Object+": "+oe.Message)
	}

	return badRequest(kindValidation, response.NewWithData(http.StatusBadRequest, messages)), true
}

func resolveConstraintViolation(err error) (resolution, bool) {
	var cverr *domainerrors.ConstraintViolationError
	if !errors.As(err, &cverr) {
		return resolution{}, false
	}

	messages := make([]string, 0, len(cverr.Violations))
	for _, v := range cverr.Violations {
		messages = append(messages, v.RootType+" "+v.PropertyPath+": "+v.Message)
	}

	return badRequest(kindConstraintViolation, response.NewWithData(http.StatusBadRequest, messages)), true
}

func resolveTypeMismatch(err error) (resolution, bool) {
	var name, typeName string

	var mismatch *domainerrors.TypeMismatchError
	var unmarshalErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &mismatch):
		name, typeName = mismatch.Name, domainerrors.TypeName(mismatch.RequiredType)
	case errors.As(err, &unmarshalErr):
		// surfaced by echo's JSON binder for body fields of the wrong type
		name, typeName = unmarshalErr.Field, domainerrors.TypeName(unmarshalErr.Type)
		if name == "" {
			name = "body"
		}
	default:
		return resolution{}, false
	}

	message := fmt.Sprintf("%s should be of type %s", name, typeName)

	return badRequest(kindTypeMismatch, response.NewWithMessage(http.StatusBadRequest, message)), true
}

func resolveBusiness(err error) (resolution, bool) {
	var berr *domainerrors.BusinessError
	if !errors.As(err, &berr) {
		return resolution{}, false
	}

	return badRequest(kindBusiness, response.NewWithMessage(http.StatusBadRequest, berr.Message())), true
}

// resolveInfrastructure handles errors raised by echo itself: unknown routes,
// unsupported methods, oversized or malformed bodies.
func resolveInfrastructure(err error) (resolution, bool) {
	var httpErr *echo.HTTPError
	var bindErr *echo.BindingError
	switch {
	case errors.As(err, &httpErr):
	case errors.As(err, &bindErr) && bindErr.HTTPError != nil:
		httpErr = bindErr.HTTPError
	default:
		return resolution{}, false
	}

	var message string
	switch msg := httpErr.Message.(type) {
	case nil:
	case string:
		message = msg
	case error:
		message = msg.Error()
	default:
		message = fmt.Sprint(msg)
	}

	return badRequest(kindInfrastructure, response.NewWithMessage(http.StatusBadRequest, message)), true
}

func badRequest(kind errorKind, env response.Envelope) resolution {
	return resolution{kind: kind, status: http.StatusBadRequest, envelope: env}
}
