package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/benesafe/registry/internal/core/ports"
)

// LogMailer writes outbound mail to the log instead of delivering it. The
// body is never logged since it may carry single-use links.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg ports.MailMessage) error {
	m.log.Info().
		Str("user_id", msg.UserID).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_bytes", len(msg.Body)).
		Msg("email")
	return nil
}
