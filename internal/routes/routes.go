package routes

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches the API surface. The server wiring injects the
// calendar service (and optionally the mailer) into the context first.
func RegisterRoutes(r *gin.Engine) {
	Health(r.Group("/"))

	api := r.Group("/api")
	api.Use(ErrorHandler())

	UserRoutes(api)
	CalendarRoutes(api)
	EventRoutes(api)
	InviteRoutes(api)
}
