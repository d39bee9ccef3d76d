package handler

import (
	"net/http"

	"sba/internal/delivery/api/binder"
	"sba/internal/delivery/api/response"
	"sba/internal/delivery/api/validator"
	domainerrors "sba/internal/domain/errors"
	"sba/internal/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const passwordsMatchTag = "passwordsmatch"

// TestHandlerParams holds dependencies for TestHandler, injected by Fx.
type TestHandlerParams struct {
	fx.In

	Validator *validator.Validator
}

// TestHandler serves diagnostic endpoints, each raising one class of error so
// the error middleware can be exercised end to end.
type TestHandler struct {
	validator *validator.Validator
}

// SampleRequest is the body accepted by TestValidation
type SampleRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Age             int    `json:"age" validate:"gte=0,lte=150"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

// NewTestHandler creates a new TestHandler instance
func NewTestHandler(params TestHandlerParams) (*TestHandler, error) {
	err := params.Validator.RegisterObjectRule(passwordsMatchTag, "passwords must match", func(obj any) bool {
		req, ok := obj.(SampleRequest)

		return ok && req.Password == req.ConfirmPassword
	}, SampleRequest{})
	if err != nil {
		return nil, err
	}

	return &TestHandler{
		validator: params.Validator,
	}, nil
}

// TestPublicEndpoint tests a public endpoint
func (h *TestHandler) TestPublicEndpoint(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"message": "Public endpoint test successful",
		"status":  "public",
	})
}

// TestValidation binds and validates a SampleRequest body
func (h *TestHandler) TestValidation(c echo.Context) error {
	var req SampleRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"name":  req.Name,
		"email": req.Email,
		"age":   req.Age,
	})
}

// TestConstraint validates the limit query parameter against its bounds
func (h *TestHandler) TestConstraint(c echo.Context) error {
	limit, err := binder.QueryParamOr(c, "limit", 10)
	if err != nil {
		return err
	}

	err = h.validator.ValidateParams(h, "testConstraint",
		validator.Param{Name: "limit", Value: limit, Tag: "gte=1,lte=100"},
	)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]int{"limit": limit})
}

// TestTypeMismatch converts the age path parameter to an int
func (h *TestHandler) TestTypeMismatch(c echo.Context) error {
	age, err := binder.PathParam[int](c, "age")
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]int{"age": age})
}

// TestBusinessError rejects the request with a business error; the reason
// query parameter overrides the message
func (h *TestHandler) TestBusinessError(c echo.Context) error {
	reason := c.QueryParam("reason")
	if reason == "" {
		reason = "invalid state"
	}

	return domainerrors.NewBusinessError(reason)
}

// TestUnexpectedError fails with an error no rule recognises
func (h *TestHandler) TestUnexpectedError(c echo.Context) error {
	return errors.Errorf("unexpected failure in %s", c.Path())
}

// TestPanic panics inside the handler
func (h *TestHandler) TestPanic(c echo.Context) error {
	panic("diagnostic panic")
}
