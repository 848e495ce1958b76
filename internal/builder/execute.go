package builder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/qbuilder/internal/model"
)

// ExecutionRequest is handed to the Executor by RunQuery.
type ExecutionRequest struct {
	ID          string
	SessionID   string
	Query       string
	Target      model.Capabilities // model the query was synthesized for
	Risky       bool
	Confirmed   bool // the user accepted the crossjoin warning
	RequestedAt time.Time
}

// Executor runs or queues a query. Implementations may block; RunQuery
// passes its context through.
type Executor interface {
	Submit(ctx context.Context, req ExecutionRequest) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, req ExecutionRequest) error

// Submit calls f(ctx, req).
func (f ExecutorFunc) Submit(ctx context.Context, req ExecutionRequest) error {
	return f(ctx, req)
}

// Confirmer asks the user whether a risky query should run anyway.
type Confirmer interface {
	ConfirmRisky(ctx context.Context, message string) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, message string) (bool, error)

// ConfirmRisky calls f(ctx, message).
func (f ConfirmerFunc) ConfirmRisky(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// decline refuses every risky query. Used when no Confirmer is configured.
type decline struct{}

func (decline) ConfirmRisky(context.Context, string) (bool, error) { return false, nil }

// IDGenerator generates session and request IDs.
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
