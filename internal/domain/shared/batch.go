package shared

import "github.com/google/uuid"

// ItemFailure records why one item of a batch operation failed
type ItemFailure struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// BatchOutcome reports per-item results of a batch operation.
// Batches never abort wholesale; committed items stay committed.
type BatchOutcome struct {
	Succeeded int           `json:"succeeded"`
	Failed    []ItemFailure `json:"failed"`
}

// AddSuccess counts one succeeded item
func (b *BatchOutcome) AddSuccess() {
	b.Succeeded++
}

// AddFailure records one failed item with its reason
func (b *BatchOutcome) AddFailure(id uuid.UUID, err error) {
	b.Failed = append(b.Failed, ItemFailure{ID: id, Reason: err.Error()})
}
