package rabbitmq

import (
	"classifieds-browser/internal/constants"
	"classifieds-browser/internal/contextkeys"
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// FavoriteEventDTO - тело сообщения об изменении избранного
type FavoriteEventDTO struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	Listing    domain.Listing `json:"listing"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher - то, что адаптеру нужно от производителя RabbitMQ
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

type FavoriteEventsAdapter struct {
	producer       Publisher
	publishTimeout time.Duration
}

func NewFavoriteEventsAdapter(producer Publisher) (*FavoriteEventsAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &FavoriteEventsAdapter{
		producer:       producer,
		publishTimeout: 5 * time.Second,
	}, nil
}

func routingKeyFor(eventType domain.FavoriteEventType) (string, error) {
	switch eventType {
	case domain.FavoriteAdded:
		return constants.RoutingKeyFavoriteAdded, nil
	case domain.FavoriteRemoved:
		return constants.RoutingKeyFavoriteRemoved, nil
	default:
		return "", fmt.Errorf("rabbitmq adapter: unknown favorite event type %q", eventType)
	}
}

func (a *FavoriteEventsAdapter) PublishFavoriteChanged(ctx context.Context, event domain.FavoriteEvent) error {
	routingKey, err := routingKeyFor(event.Type)
	if err != nil {
		return err
	}

	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "FavoriteEventsAdapter",
		"routing_key": routingKey,
		"listing_id":  event.Listing.ID,
	})

	dto := FavoriteEventDTO{
		EventID:    uuid.New().String(),
		Type:       string(event.Type),
		Listing:    event.Listing,
		OccurredAt: event.OccurredAt.UTC(),
	}
	body, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal favorite event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    dto.EventID,
		Timestamp:    dto.OccurredAt,
		Headers:      make(amqp.Table),
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, a.publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish favorite event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish favorite event for %s: %w", event.Listing.ID, err)
	}

	adapterLogger.Debug("Favorite event published", port.Fields{"event_id": dto.EventID})
	return nil
}
