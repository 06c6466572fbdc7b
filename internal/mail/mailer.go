// Package mail sends transactional email over SMTP. Currently only the
// password-reset message is needed.
package mail

import (
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"net/url"
	"strings"
)

// Config holds SMTP connection settings. An empty Server disables sending.
type Config struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	// FrontendURL is the base URL reset links point at.
	FrontendURL string
}

// Mailer sends email over SMTP with STARTTLS negotiated by the server.
type Mailer struct {
	cfg    Config
	logger *slog.Logger

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates a Mailer. Enabled() is false when no server is set.
func NewMailer(cfg Config, logger *slog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: logger,
		send:   smtp.SendMail,
	}
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Server != ""
}

// SendPasswordReset emails a reset link carrying the token. The link
// expires with the token (1 hour).
func (m *Mailer) SendPasswordReset(toEmail, resetToken string) error {
	if !m.Enabled() {
		return fmt.Errorf("mail is not configured")
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s",
		strings.TrimRight(m.cfg.FrontendURL, "/"), url.QueryEscape(resetToken))

	msg := buildPasswordResetMessage(m.cfg.From, toEmail, resetURL)

	addr := fmt.Sprintf("%s:%d", m.cfg.Server, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Server)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}

	m.logger.Info("password reset email sent", slog.String("to", toEmail))
	return nil
}

// buildPasswordResetMessage renders a multipart/alternative message with
// text and HTML bodies.
func buildPasswordResetMessage(from, to, resetURL string) []byte {
	const boundary = "billax-mail-boundary"

	text := fmt.Sprintf(`Password Recovery

You have requested to reset your password. Use the link below to continue:

%s

If you didn't request this change, you can ignore this email.
This link will expire in 1 hour.
`, resetURL)

	html := fmt.Sprintf(`<h2>Password Recovery</h2>
<p>You have requested to reset your password. Click the link below to continue:</p>
<p><a href="%s">Reset Password</a></p>
<p>If you didn't request this change, you can ignore this email.</p>
<p>This link will expire in 1 hour.</p>
`, resetURL)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", "Password Recovery - Billax"))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}
