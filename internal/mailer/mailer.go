// Package mailer sends plain-text mail over SMTP. Delivery here is best
// effort by contract: registration must succeed even when the mail
// infrastructure is down, so callers log failures instead of propagating
// them.
package mailer

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
)

// Config carries SMTP connection settings. An empty Host disables the
// client.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Client is a minimal SMTP sender.
type Client struct {
	cfg Config
}

func New(cfg Config) *Client { return &Client{cfg: cfg} }

// Enabled reports whether SMTP settings were provided.
func (c *Client) Enabled() bool { return c.cfg.Host != "" }

// Send delivers one plain-text message to a single recipient.
func (c *Client) Send(to, subject, body string) error {
	if !c.Enabled() {
		return fmt.Errorf("mailer: no SMTP host configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		c.cfg.From, to, subject, body)

	addr := c.cfg.Host + ":" + c.cfg.Port
	var auth smtp.Auth
	if c.cfg.Username != "" {
		auth = smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
	}

	// Port 587 expects STARTTLS before AUTH.
	if c.cfg.Port == "587" {
		return c.sendWithStartTLS(addr, auth, to, []byte(msg))
	}
	return smtp.SendMail(addr, auth, c.cfg.From, []string{to}, []byte(msg))
}

func (c *Client) sendWithStartTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("mailer: dial: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: c.cfg.Host}); err != nil {
		return fmt.Errorf("mailer: starttls: %w", err)
	}
	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("mailer: auth: %w", err)
		}
	}
	if err = client.Mail(c.cfg.From); err != nil {
		return fmt.Errorf("mailer: mail from: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("mailer: rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("mailer: write: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("mailer: close data: %w", err)
	}
	return client.Quit()
}
