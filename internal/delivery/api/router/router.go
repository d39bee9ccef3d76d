// Package router contains routing for the API delivery.
package router

import (
	"sba/config"
	"sba/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	TestHandler *handler.TestHandler
	Config      *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	testHandler *handler.TestHandler
	config      *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		testHandler: params.TestHandler,
		config:      params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
}

// RegisterTestRoutes sets up the diagnostic routes when they are enabled.
func (r *router) RegisterTestRoutes(e *echo.Echo) {
	if r.config.TestRoutes == nil || !r.config.TestRoutes.Enabled {
		return
	}

	testGroup := e.Group("/test")
	{
		testGroup.GET("/public", r.testHandler.TestPublicEndpoint)
		testGroup.POST("/validation", r.testHandler.TestValidation)
		testGroup.GET("/constraint", r.testHandler.TestConstraint)
		testGroup.GET("/typed/:age", r.testHandler.TestTypeMismatch)
		testGroup.GET("/business", r.testHandler.TestBusinessError)
		testGroup.GET("/unexpected", r.testHandler.TestUnexpectedError)
		testGroup.GET("/panic", r.testHandler.TestPanic)
	}
}
