// Package notifier turns reservation lifecycle events into audit log records.
package notifier

import (
	"context"
	"fmt"

	"sarpras/pkg/kafka"
	"sarpras/pkg/logger"
	"sarpras/pkg/model"
)

type Handler struct {
	log *logger.Logger
}

func NewHandler(log *logger.Logger) *Handler {
	return &Handler{log: log.With("component", "notifier")}
}

// Handle is a kafka.MessageHandler. Malformed events are permanent failures
// and go to the dead-letter topic without retries.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.ReservationEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}

	eventType := event.Type
	if eventType == "" {
		eventType = msg.GetEventType()
	}
	if !knownEvent(eventType) {
		return kafka.NewPermanentError("unsupported event type", fmt.Errorf("%q", eventType))
	}
	if event.ReservationID == "" {
		return kafka.NewPermanentError("event without reservation id", nil)
	}

	args := []any{
		"event_id", msg.GetEventID(),
		"event_type", eventType,
		"reservation_id", event.ReservationID,
		"kind", event.Kind,
		"asset_code", event.AssetCode,
		"start_time", event.StartTime,
		"end_time", event.EndTime,
		"occurred_at", event.OccurredAt,
	}
	if event.AssetName != "" {
		args = append(args, "asset_name", event.AssetName)
	}
	if event.DriverRef != "" {
		args = append(args, "driver_ref", event.DriverRef)
	}
	if len(event.Items) > 0 {
		args = append(args, "items", itemSummary(event.Items))
	}

	h.log.InfoContext(ctx, "Reservation audit", args...)
	return nil
}

func knownEvent(eventType string) bool {
	switch eventType {
	case model.EventReservationCreated, model.EventReservationUpdated, model.EventReservationDeleted:
		return true
	}
	return false
}

func itemSummary(items []model.BorrowedItem) map[string]int {
	summary := make(map[string]int, len(items))
	for _, item := range items {
		summary[item.ItemCode] += item.Quantity
	}
	return summary
}
