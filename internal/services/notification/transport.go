package notification

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SnapshotName is the attachment name of the detection frame.
const SnapshotName = "detection_frame.jpg"

// Message is a rendered alert addressed to one recipient.
type Message struct {
	To       string
	Subject  string
	HTML     string
	Snapshot []byte
}

// Transport delivers messages. Verify checks connectivity and credentials.
type Transport interface {
	Send(ctx context.Context, msg Message) error
	Verify(ctx context.Context) error
}

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	Timeout  time.Duration
}

// SMTPTransport sends mail over SMTP with mandatory STARTTLS and plain auth.
type SMTPTransport struct {
	settings SMTPSettings
}

func NewSMTPTransport(settings SMTPSettings) *SMTPTransport {
	return &SMTPTransport{settings: settings}
}

func (t *SMTPTransport) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(t.settings.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.settings.Username),
		mail.WithPassword(t.settings.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if t.settings.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(t.settings.Timeout))
	}
	c, err := mail.NewClient(t.settings.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return c, nil
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.FromFormat(t.settings.FromName, t.settings.Username); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if len(msg.Snapshot) > 0 {
		if err := m.AttachReader(SnapshotName, bytes.NewReader(msg.Snapshot)); err != nil {
			return fmt.Errorf("attach snapshot: %w", err)
		}
	}

	c, err := t.client()
	if err != nil {
		return err
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// Verify dials the server, negotiates TLS and authenticates without sending.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	c, err := t.client()
	if err != nil {
		return err
	}
	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	return c.Close()
}
