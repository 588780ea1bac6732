package reward

import (
	"context"

	"github.com/google/uuid"
)

// AchievementRepository persists learning achievements. Uniqueness of
// (user, course) is enforced by the storage layer; Upsert overwrites an
// existing row.
type AchievementRepository interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*LearningAchievement, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*LearningAchievement, error)
	Upsert(ctx context.Context, achievement *LearningAchievement) error
}

// CompletionRequestRepository persists course completion requests
type CompletionRequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CourseCompletionRequest, error)
	// FindPendingByCourse returns the PENDING request for a course, or
	// ErrNotFound when none exists.
	FindPendingByCourse(ctx context.Context, courseID uuid.UUID) (*CourseCompletionRequest, error)
	Create(ctx context.Context, request *CourseCompletionRequest) error
	Save(ctx context.Context, request *CourseCompletionRequest) error
}
