package refund

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists refund requests
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// FindPendingByEnrollment returns the PENDING request for an
	// enrollment, or ErrNotFound when none exists.
	FindPendingByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*Request, error)
	Create(ctx context.Context, request *Request) error
	Save(ctx context.Context, request *Request) error
	// Delete removes a request entirely; used when the requester
	// cancels a PENDING request.
	Delete(ctx context.Context, id uuid.UUID) error
}
