package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	AppointmentBooked        = "appointment.booked"
	AppointmentStatusChanged = "appointment.status_changed"
)

// AppointmentEvent is published whenever an appointment is created or its status changes.
type AppointmentEvent struct {
	Type           string `json:"type"`
	AppointmentID  string `json:"appointment_id"`
	PatientID      string `json:"patient_id"`
	DoctorID       string `json:"doctor_id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	ActorID        string `json:"actor_id"`
	OccurredAt     string `json:"occurred_at"`
}

// Publisher delivers appointment events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt AppointmentEvent) error
}

// StreamPublisher appends events to a Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

func NewStreamPublisher(client *redis.Client, stream string, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, logger: logger}
}

// Publish adds evt to the stream as a JSON "data" field plus a unix "timestamp".
func (p *StreamPublisher) Publish(ctx context.Context, evt AppointmentEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":      string(body),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
	if err != nil {
		return err
	}
	p.logger.Debug("appointment event published",
		zap.String("stream", p.stream),
		zap.String("message_id", id),
		zap.String("type", evt.Type),
		zap.String("appointment_id", evt.AppointmentID),
	)
	return nil
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, AppointmentEvent) error { return nil }
