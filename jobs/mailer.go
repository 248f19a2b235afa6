package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/camino-saas/camino/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Mailer sends transactional email over SMTP. An empty host disables
// delivery; messages are logged instead, which is what local development and
// CI use.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics

	// send is swappable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer wires dependencies for the mail handler.
func NewMailer(host string, port int, username, password, from string, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		Logger:   logger,
		send:     smtp.SendMail,
	}
}

func (m *Mailer) metrics() *jobmetrics.Metrics {
	if m.Metrics != nil {
		return m.Metrics
	}
	return defaultJobMetrics
}

// Send delivers one message.
func (m *Mailer) Send(to, subject, body string) error {
	if m.Host == "" {
		m.Logger.Info("mail delivery disabled, dropping message",
			slog.String("to", to), slog.String("subject", subject))
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	return m.send(addr, auth, m.From, []string{to}, []byte(msg.String()))
}

// Handle processes TaskTypeSendEmail tasks.
func (m *Mailer) Handle(ctx context.Context, t *asynq.Task) error {
	if m == nil {
		return errors.New("mailer: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	tracker := m.metrics().Track(TaskTypeSendEmail)
	err := m.Send(payload.To, payload.Subject, payload.Body)
	if err != nil {
		m.Logger.Error("send email", slog.String("to", payload.To), slog.Any("error", err))
	}
	return tracker.End(err)
}
