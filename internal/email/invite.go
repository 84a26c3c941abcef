package email

import (
	"fmt"
	"html"
	"time"
)

// InviteNotification builds the message sent to a calendar's owner when
// one of their calendars is invited to an event.
func InviteNotification(to, eventTitle, calendarName string, start time.Time, shareURL string) *Message {
	title := html.EscapeString(eventTitle)
	cal := html.EscapeString(calendarName)

	body := fmt.Sprintf(`<html><body>
<p>The calendar <b>%s</b> has been invited to <b>%s</b>.</p>
<p>Starts: %s</p>
<p><a href="%s">View the event</a> to respond.</p>
</body></html>`,
		cal, title, start.Format(time.RFC1123), html.EscapeString(shareURL))

	return &Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Invitation: %s", eventTitle),
		HTML:    body,
	}
}
