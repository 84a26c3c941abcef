package email

import (
	"fmt"
	"log/slog"

	"github.com/inbucket/html2text"
	mail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the application config's email section. An empty host
// disables sending.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// Client sends multipart notification mail over SMTP.
type Client struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// Message represents an email message
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string // optional, will be auto-generated from HTML if empty
}

func NewClient(cfg SMTPConfig) *Client {
	return &Client{
		cfg:    cfg,
		logger: slog.With("component", "email"),
	}
}

// Send sends an email message
func (c *Client) Send(msg *Message) error {
	if !c.cfg.Enabled() {
		c.logger.Debug("Email disabled, dropping message", "subject", msg.Subject)
		return nil
	}

	if msg.Text == "" {
		text, err := htmlToText(msg.HTML)
		if err != nil {
			return fmt.Errorf("failed to convert HTML to text: %w", err)
		}
		msg.Text = text
	}

	m := mail.NewMsg()
	if err := m.From(c.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	opts := []mail.Option{mail.WithPort(c.cfg.Port)}
	if c.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.cfg.Username),
			mail.WithPassword(c.cfg.Password),
		)
	}

	client, err := mail.NewClient(c.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	return client.DialAndSend(m)
}

func htmlToText(html string) (string, error) {
	return html2text.FromString(html, html2text.Options{TextOnly: true})
}
