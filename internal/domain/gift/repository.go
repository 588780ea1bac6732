package gift

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists course gifts. Code uniqueness is enforced by the
// storage layer.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CourseGift, error)
	FindByCode(ctx context.Context, code string) (*CourseGift, error)
	Create(ctx context.Context, gift *CourseGift) error
	Save(ctx context.Context, gift *CourseGift) error
}
