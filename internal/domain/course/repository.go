package course

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists courses
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Course, error)
	Save(ctx context.Context, course *Course) error
}

// EnrollmentRepository persists enrollments. Uniqueness of
// (user, course) is enforced by the storage layer.
type EnrollmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Enrollment, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*Enrollment, error)
	FindActiveByCourse(ctx context.Context, courseID uuid.UUID) ([]*Enrollment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Enrollment, error)
	CountActiveByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
	Create(ctx context.Context, enrollment *Enrollment) error
	// SaveWithLock updates the enrollment with an optimistic version
	// check; concurrent modification surfaces as a concurrency conflict.
	SaveWithLock(ctx context.Context, enrollment *Enrollment) error
}
