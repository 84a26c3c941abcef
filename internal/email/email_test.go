package email

import (
	"strings"
	"testing"
	"time"
)

func TestSendDisabled(t *testing.T) {
	// No host configured; sending silently drops the message
	client := NewClient(SMTPConfig{})

	msg := InviteNotification("bill@gmail.com", "dinner", "sally@gmail.com",
		time.Date(2017, time.November, 14, 15, 30, 0, 0, time.UTC),
		"http://localhost:8080/api/events/1")

	if err := client.Send(msg); err != nil {
		t.Fatalf("disabled client returned %v", err)
	}
}

func TestInviteNotification(t *testing.T) {
	start := time.Date(2017, time.November, 14, 15, 30, 0, 0, time.UTC)
	msg := InviteNotification("bill@gmail.com", "dinner <&>", "sally@gmail.com",
		start, "http://localhost:8080/api/events/1")

	if len(msg.To) != 1 || msg.To[0] != "bill@gmail.com" {
		t.Errorf("recipients = %v", msg.To)
	}
	if msg.Subject != "Invitation: dinner <&>" {
		t.Errorf("subject = %q", msg.Subject)
	}

	// Markup in the title must be escaped in the HTML body
	if strings.Contains(msg.HTML, "dinner <&>") {
		t.Error("event title not escaped in HTML body")
	}
	if !strings.Contains(msg.HTML, "dinner &lt;&amp;&gt;") {
		t.Errorf("escaped title missing from body: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "http://localhost:8080/api/events/1") {
		t.Error("share link missing from body")
	}
}

func TestHTMLToText(t *testing.T) {
	text, err := htmlToText("<html><body><p>Hello <b>world</b></p></body></html>")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if !strings.Contains(text, "Hello world") {
		t.Errorf("text = %q", text)
	}
}
