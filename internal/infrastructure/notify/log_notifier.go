package notify

import (
	"context"

	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the application log. It is the
// default sink in development and tests, where no delivery channel is
// wired.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

// Notify implements shared.Notifier
func (n *LogNotifier) Notify(ctx context.Context, userID uuid.UUID, kind shared.NotificationKind, payload map[string]any) error {
	n.logger.Info("Notification",
		zap.String("user_id", userID.String()),
		zap.String("kind", string(kind)),
		zap.Any("payload", payload),
	)
	return nil
}

var _ shared.Notifier = (*LogNotifier)(nil)
