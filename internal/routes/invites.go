package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jk-calendar/internal/calendar"
	"jk-calendar/internal/email"
	"jk-calendar/internal/storage"
)

type createInviteRequest struct {
	CalendarID int64  `json:"calendar_id"`
	Status     string `json:"status"`
}

type respondRequest struct {
	Status string `json:"status"`
}

func InviteRoutes(r *gin.RouterGroup) {

	// Share an event with another calendar. Requires edit on the event's
	// owning calendar.
	r.POST("/events/:id/invites", func(c *gin.Context) {
		eventID, ok := idParam(c, "id")
		if !ok {
			return
		}

		svc := Service(c)
		event, err := svc.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !requireAccess(c, event.CalendarID, calendar.PermissionEdit) {
			return
		}

		var req createInviteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		invite, err := svc.Invite(c.Request.Context(), eventID, req.CalendarID,
			calendar.StatusCode(req.Status))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if mailer := Mailer(c); mailer != nil {
			go notifyInvitees(svc, mailer, event, invite.CalendarID)
		}

		c.JSON(http.StatusCreated, invite)
	})

	r.GET("/events/:id/invites", func(c *gin.Context) {
		eventID, ok := idParam(c, "id")
		if !ok {
			return
		}

		invites, err := Service(c).ListEventInvites(c.Request.Context(), eventID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"invites": invites})
	})

	// Respond to an invite: the only mutation path. Status changes stamp
	// the last-modified marker; the row itself stays forever.
	r.PATCH("/invites/:id", func(c *gin.Context) {
		inviteID, ok := idParam(c, "id")
		if !ok {
			return
		}

		svc := Service(c)
		invite, err := svc.GetInvite(c.Request.Context(), inviteID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		// Responding is for members of the invited calendar
		if !requireAccess(c, invite.CalendarID, calendar.PermissionView) {
			return
		}

		var req respondRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		updated, err := svc.RespondToInvite(c.Request.Context(), inviteID,
			calendar.StatusCode(req.Status))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})
}

// notifyInvitees mails every member of the invited calendar. Best effort,
// off the request path.
func notifyInvitees(svc *calendar.Service, mailer *email.Client, event *storage.Event, calID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	members, err := svc.ListCalendarMembers(ctx, calID)
	if err != nil {
		slog.Warn("Invite notification skipped", "error", err, "cal_id", calID)
		return
	}

	cal, err := svc.GetCalendar(ctx, calID)
	if err != nil {
		slog.Warn("Invite notification skipped", "error", err, "cal_id", calID)
		return
	}

	for _, member := range members {
		msg := email.InviteNotification(member.Email, event.Title, cal.Name, event.Start, ShareURL(event.ID))
		if err := mailer.Send(msg); err != nil {
			slog.Warn("Invite notification failed", "error", err, "to", member.Email)
		}
	}
}
