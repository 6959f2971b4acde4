package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

// ImplicitTLSPort is the SMTP port that uses TLS from the first byte
const ImplicitTLSPort = 465

// ErrStartTLSUnavailable is returned when TLS is required but the server does
// not offer STARTTLS
var ErrStartTLSUnavailable = errors.New("SMTP server does not offer STARTTLS")

const ehloTimeout = 10 * time.Second

// MailConfig is the SMTP configuration stored in the site settings
type MailConfig struct {
	Host      string
	Port      int
	UseTLS    bool
	Username  string
	Password  string
	Signature string
}

// MailAttachment is a single file attached to an outgoing message
type MailAttachment struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// OutgoingMail is one message to one recipient
type OutgoingMail struct {
	From       string
	To         string
	ToName     string
	Subject    string
	Body       string
	Attachment *MailAttachment
}

// Mailer sends mail over SMTP using settings supplied per call
type Mailer interface {
	// Send opens one connection, delivers msg and closes the connection
	Send(ctx context.Context, cfg MailConfig, msg OutgoingMail) error
	// Verify connects and authenticates without sending anything
	Verify(ctx context.Context, cfg MailConfig) error
}

// GomailMailer is the Mailer backed by gopkg.in/gomail.v2
type GomailMailer struct {
	// TLSConfig overrides the TLS settings used for STARTTLS and implicit TLS
	TLSConfig *tls.Config
}

// NewGomailMailer returns a mailer using system TLS roots
func NewGomailMailer() *GomailMailer {
	return &GomailMailer{}
}

// dialer applies cfg.UseTLS on ports other than 465. With UseTLS the server
// certificate is verified and requireStartTLS must have passed. Without it
// gomail still upgrades when STARTTLS is offered, but the certificate is not
// checked.
func (g *GomailMailer) dialer(cfg MailConfig) *gomail.Dialer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.Port == ImplicitTLSPort
	if g.TLSConfig != nil {
		d.TLSConfig = g.TLSConfig.Clone()
	} else {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}
	if !cfg.UseTLS && !d.SSL {
		d.TLSConfig.InsecureSkipVerify = true
	}
	return d
}

// requireStartTLS reads the server's EHLO reply and fails with
// ErrStartTLSUnavailable when STARTTLS is missing. gomail falls back to
// plaintext silently in that case.
func requireStartTLS(ctx context.Context, cfg MailConfig) error {
	if !cfg.UseTLS || cfg.Port == ImplicitTLSPort {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, ehloTimeout)
	defer cancel()

	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if err := c.Hello("localhost"); err != nil {
		return err
	}
	if ok, _ := c.Extension("STARTTLS"); !ok {
		return ErrStartTLSUnavailable
	}
	return c.Quit()
}

// Send delivers msg. Errors are returned and never retried here.
func (g *GomailMailer) Send(ctx context.Context, cfg MailConfig, msg OutgoingMail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if att := msg.Attachment; att != nil {
		m.Attach(att.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			r, err := att.Open()
			if err != nil {
				return fmt.Errorf("failed to open attachment: %w", err)
			}
			defer r.Close()
			_, err = io.Copy(w, r)
			return err
		}))
	}

	if err := requireStartTLS(ctx, cfg); err != nil {
		return err
	}
	return g.dialer(cfg).DialAndSend(m)
}

// Verify dials the server, authenticates and closes the session
func (g *GomailMailer) Verify(ctx context.Context, cfg MailConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireStartTLS(ctx, cfg); err != nil {
		return err
	}
	sc, err := g.dialer(cfg).Dial()
	if err != nil {
		return err
	}
	return sc.Close()
}
