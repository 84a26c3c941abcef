package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"jk-calendar/internal/calendar"
	"jk-calendar/internal/importer"
)

type createCalendarRequest struct {
	Name string `json:"name"`
}

type grantRequest struct {
	UserID     int64  `json:"user_id"`
	Permission string `json:"permission"`
}

func CalendarRoutes(r *gin.RouterGroup) {

	r.POST("/calendars", func(c *gin.Context) {
		var req createCalendarRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		id, err := Service(c).CreateCalendar(c.Request.Context(), req.Name)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"cal_id": id, "name": req.Name})
	})

	r.GET("/calendars/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		cal, err := Service(c).GetCalendar(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, cal)
	})

	r.GET("/calendars/:id/members", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		members, err := Service(c).ListCalendarMembers(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"members": members})
	})

	// Sharing: grant another user a level on this calendar. Only an owner
	// may hand out grants.
	r.POST("/calendars/:id/grants", func(c *gin.Context) {
		calID, ok := idParam(c, "id")
		if !ok {
			return
		}
		if !requireAccess(c, calID, calendar.PermissionOwner) {
			return
		}

		var req grantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		grantID, err := Service(c).GrantAccess(c.Request.Context(), req.UserID, calID,
			calendar.PermissionCode(req.Permission))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"cal_user_id": grantID})
	})

	r.DELETE("/grants/:id", func(c *gin.Context) {
		grantID, ok := idParam(c, "id")
		if !ok {
			return
		}
		if _, ok := callerID(c); !ok {
			return
		}

		if err := Service(c).RevokeAccess(c.Request.Context(), grantID); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	// Week view: the ISO week containing ?date=YYYY-MM-DD (default today)
	r.GET("/calendars/:id/week", func(c *gin.Context) {
		calID, ok := idParam(c, "id")
		if !ok {
			return
		}
		if !requireAccess(c, calID, calendar.PermissionView) {
			return
		}

		date := time.Now().UTC()
		if raw := c.Query("date"); raw != "" {
			var err error
			date, err = time.Parse("2006-01-02", raw)
			if err != nil {
				AbortWithError(c, ErrInvalidParameter)
				return
			}
		}

		events, err := Service(c).WeekOf(c.Request.Context(), calID, date)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		monday, sundayEnd := calendar.WeekRange(date)
		c.JSON(http.StatusOK, gin.H{
			"week_start": monday.Format("2006-01-02"),
			"week_end":   sundayEnd.Format("2006-01-02"),
			"events":     events,
		})
	})

	// Month view: events starting in ?year=&month=
	r.GET("/calendars/:id/month", func(c *gin.Context) {
		calID, ok := idParam(c, "id")
		if !ok {
			return
		}
		if !requireAccess(c, calID, calendar.PermissionView) {
			return
		}

		year, err := strconv.Atoi(c.Query("year"))
		if err != nil {
			AbortWithError(c, ErrInvalidParameter)
			return
		}
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil || month < 1 || month > 12 {
			AbortWithError(c, ErrInvalidParameter)
			return
		}

		events, err := Service(c).MonthOf(c.Request.Context(), calID, year, time.Month(month))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "events": events})
	})

	// Pending invites addressed to this calendar ("my invites" view)
	r.GET("/calendars/:id/invites", func(c *gin.Context) {
		calID, ok := idParam(c, "id")
		if !ok {
			return
		}
		if !requireAccess(c, calID, calendar.PermissionView) {
			return
		}

		invites, err := Service(c).ListCalendarInvites(c.Request.Context(), calID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"invites": invites})
	})

	// Bulk import from a CSV export
	r.POST("/calendars/:id/import", func(c *gin.Context) {
		calID, ok := idParam(c, "id")
		if !ok {
			return
		}
		if !requireAccess(c, calID, calendar.PermissionEdit) {
			return
		}

		created, err := importer.Import(c.Request.Context(), Service(c), calID, c.Request.Body)
		if err != nil {
			// Rows before the failure stay created; report both
			c.JSON(http.StatusBadRequest, gin.H{
				"created": created,
				"error":   GetErrorMessage(err),
			})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"created": created})
	})
}
