package server

import (
	"github.com/charmbracelet/log"
)

// NewAppRouter builds the router for the login service: request logging around panic recovery around the
// auth and health handlers.
func NewAppRouter(auth *AuthHandler, health *HealthHandler, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(RequestLogger(logger), Recoverer(logger))
	router.Handler(auth)
	if health != nil {
		router.Handler(health)
	}
	return router
}
