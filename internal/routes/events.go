package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"jk-calendar/internal/calendar"
	"jk-calendar/internal/config"
)

type createEventRequest struct {
	Title       string     `json:"title"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	TimeZone    string     `json:"time_zone"`
}

// ShareURL builds the externally visible link for an event.
func ShareURL(eventID int64) string {
	base := config.DEFAULT_SHARE_BASE_URL
	if config.Cfg != nil && config.Cfg.BaseURL != "" {
		base = config.Cfg.BaseURL
	}
	return fmt.Sprintf("%s/api/events/%d", base, eventID)
}

func EventRoutes(r *gin.RouterGroup) {

	r.POST("/calendars/:id/events", func(c *gin.Context) {
		calID, ok := idParam(c, "id")
		if !ok {
			return
		}
		if !requireAccess(c, calID, calendar.PermissionEdit) {
			return
		}

		var req createEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		event, err := Service(c).CreateEvent(c.Request.Context(), calID, calendar.EventInput{
			Title:       req.Title,
			Start:       req.Start,
			End:         req.End,
			Description: req.Description,
			Location:    req.Location,
			TimeZone:    req.TimeZone,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, event)
	})

	r.GET("/events/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		event, err := Service(c).GetEvent(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	})

	// QR code of the event share link, for passing an event around in
	// meatspace.
	r.GET("/events/:id/qr", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		// 404 for QRs of nonexistent events
		if _, err := Service(c).GetEvent(c.Request.Context(), id); err != nil {
			AbortWithError(c, err)
			return
		}

		png, err := qrcode.Encode(ShareURL(id), qrcode.Medium, config.QR_IMAGE_SIZE)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})
}
