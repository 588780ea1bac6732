package shared

import (
	"context"

	"github.com/google/uuid"
)

// NotificationKind identifies the event a notification reports
type NotificationKind string

const (
	NotifyEnrollSuccess      NotificationKind = "ENROLL_SUCCESS"
	NotifyCheckinSuccess     NotificationKind = "CHECKIN_SUCCESS"
	NotifyGiftReceived       NotificationKind = "GIFT_RECEIVED"
	NotifyGiftClaimed        NotificationKind = "GIFT_CLAIMED"
	NotifyRefundDecision     NotificationKind = "REFUND_DECISION"
	NotifyCompletionDecision NotificationKind = "COMPLETION_DECISION"
	NotifyAchievementIssued  NotificationKind = "ACHIEVEMENT_ISSUED"
	NotifyCourseCompleted    NotificationKind = "COURSE_COMPLETED"
	NotifyCorporateAllocated NotificationKind = "CORPORATE_ALLOCATED"
)

// Notifier is the fire-and-forget notification sink.
// Callers log delivery failures and never let them fail the
// operation that triggered the notification.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind NotificationKind, payload map[string]any) error
}
