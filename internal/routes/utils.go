package routes

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"jk-calendar/internal/calendar"
	"jk-calendar/internal/email"
)

// Service returns the calendar service injected by the server wiring.
func Service(c *gin.Context) *calendar.Service {
	return c.MustGet("Calendar").(*calendar.Service)
}

// Mailer returns the notification mailer, or nil when none is configured.
func Mailer(c *gin.Context) *email.Client {
	mailer, exists := c.Get("Mailer")
	if !exists || mailer == nil {
		return nil
	}
	return mailer.(*email.Client)
}

// idParam parses a numeric path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		AbortWithError(c, ErrInvalidParameter)
		return 0, false
	}
	return id, true
}

// callerID resolves the acting user from the X-User-ID header. Session
// handling lives outside this service; the route layer only needs an
// identity to check against the access graph.
func callerID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		AbortWithError(c, ErrMissingCaller)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		AbortWithError(c, ErrMissingCaller)
		return 0, false
	}
	return id, true
}

// requireAccess aborts unless the caller holds at least min on the calendar.
func requireAccess(c *gin.Context, calID int64, min calendar.PermissionCode) bool {
	userID, ok := callerID(c)
	if !ok {
		return false
	}

	allowed, err := Service(c).CanAccess(c.Request.Context(), userID, calID, min)
	if err != nil {
		AbortWithError(c, err)
		return false
	}
	if !allowed {
		AbortWithError(c, ErrInsufficientPermissions)
		return false
	}
	return true
}
