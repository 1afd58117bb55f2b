// Package producer defines the interface for emitting telemetry events to
// Kafka.
package producer

import (
	"context"

	"medgate/backend/internal/telemetry/domain"
)

// Producer emits telemetry events. Callers use it best-effort: log and ignore
// errors.
type Producer interface {
	// Emit sends a single telemetry event. Implementations may block briefly;
	// call from a goroutine if needed.
	Emit(ctx context.Context, event *domain.Event) error
	// Close releases resources. Safe to call if already closed.
	Close() error
}
