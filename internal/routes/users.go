package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type onboardRequest struct {
	Email string `json:"email"`
}

func UserRoutes(r *gin.RouterGroup) {

	// Onboarding: user + default calendar + owner grant
	r.POST("/users", func(c *gin.Context) {
		var req onboardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		ob, err := Service(c).Onboard(c.Request.Context(), req.Email)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, ob)
	})

	r.GET("/users/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		user, err := Service(c).GetUser(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	})

	// Calendars the user can act on, with the granted level
	r.GET("/users/:id/calendars", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		grants, err := Service(c).ListUserCalendars(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"calendars": grants})
	})
}
