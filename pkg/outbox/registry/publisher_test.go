package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/config"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/outbox"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/outbox/payloads"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{VisitEventsTopic: "fm-visit-events"})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

func envelopeRow(t *testing.T, eventType enums.OutboxEventType, aggType enums.OutboxAggregateType, data interface{}) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: aggType,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatal("expected error without topic")
	}
}

func TestResolveVisitCheckedOut(t *testing.T) {
	reg := testRegistry(t)
	visitID := uuid.New()
	row := envelopeRow(t, enums.OutboxEventVisitCheckedOut, enums.OutboxAggregateVisit, payloads.VisitCheckedOutEvent{
		VisitID:     visitID,
		PromoterID:  uuid.New(),
		StoreID:     uuid.New(),
		HoursWorked: 2.5,
	})

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "fm-visit-events" {
		t.Fatalf("expected visit events topic, got %q", resolved.Descriptor.Topic)
	}
	event, ok := resolved.Payload.(*payloads.VisitCheckedOutEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if event.VisitID != visitID {
		t.Fatalf("expected visit %s got %s", visitID, event.VisitID)
	}
	if event.HoursWorked != 2.5 {
		t.Fatalf("expected 2.5 hours, got %f", event.HoursWorked)
	}
}

func TestResolveRejectsUnknownEventType(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.OutboxEventType("order.created"), enums.OutboxAggregateVisit, map[string]string{"x": "y"})

	_, err := reg.Resolve(row)
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}

func TestResolveRejectsAggregateMismatch(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.OutboxEventRouteReplaced, enums.OutboxAggregateVisit, payloads.RouteReplacedEvent{})

	_, err := reg.Resolve(row)
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}

func TestResolveRejectsEmptyPayload(t *testing.T) {
	reg := testRegistry(t)
	payload, _ := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       json.RawMessage("null"),
	})
	row := models.OutboxEvent{
		EventType:     enums.OutboxEventVisitCheckedIn,
		AggregateType: enums.OutboxAggregateVisit,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}

	var nonRetryable NonRetryableError
	if _, err := reg.Resolve(row); !errors.As(err, &nonRetryable) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}
