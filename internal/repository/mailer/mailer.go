package mailer

import (
	"context"
	"log/slog"
)

// Mailer is the fire-and-forget mail collaborator. Delivery lives outside
// the synchronization core; this implementation records the intent.
type Mailer struct {
	logger *slog.Logger
}

func NewMailer(logger *slog.Logger) *Mailer {
	return &Mailer{logger: logger}
}

func (m *Mailer) SendVerification(ctx context.Context, email string) {
	m.logger.InfoContext(ctx, "verification mail queued", "email", email)
}

func (m *Mailer) SendRoomInvite(ctx context.Context, email, roomName string) {
	m.logger.InfoContext(ctx, "room invite mail queued", "email", email, "room", roomName)
}
