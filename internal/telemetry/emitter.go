// Package telemetry provides best-effort event emission for the gating flows.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"medgate/backend/internal/telemetry/domain"
)

// Source identifies this service in emitted events.
const Source = "medgate-backend"

// EventEmitter emits one telemetry event. Implemented by producer.KafkaProducer.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}

// NewEvent builds an event with a fresh ID, the service source, and the
// current UTC time.
func NewEvent(eventType, requesterID, patientID, sessionID string) *domain.Event {
	return &domain.Event{
		ID:          uuid.New().String(),
		EventType:   eventType,
		RequesterID: requesterID,
		PatientID:   patientID,
		SessionID:   sessionID,
		Source:      Source,
		CreatedAt:   time.Now().UTC(),
	}
}
