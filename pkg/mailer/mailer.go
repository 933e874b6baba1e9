package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Mailer sends plain-text email over SMTP. When no SMTP host is configured the
// mailer runs in dry mode: messages are logged instead of sent, so local
// environments work without a mail server.
type Mailer struct {
	host        string
	port        int
	user        string
	pass        string
	fromAddress string
	fromName    string
	logger      *zap.Logger
}

// Config holds SMTP settings for the mailer.
type Config struct {
	Host        string
	Port        int
	User        string
	Pass        string
	FromAddress string
	FromName    string
}

// New creates a Mailer.
func New(cfg Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{
		host:        cfg.Host,
		port:        cfg.Port,
		user:        cfg.User,
		pass:        cfg.Pass,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      logger,
	}
}

// DryRun reports whether the mailer logs instead of sending.
func (m *Mailer) DryRun() bool {
	return m.host == ""
}

// Send delivers a single plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if m.DryRun() {
		m.logger.Info("mailer dry run, message not sent",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.fromName, m.fromAddress)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.fromAddress, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
