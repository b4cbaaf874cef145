package notify

import (
	"encoding/json"

	"cf_bridge/internal/db"
	"cf_bridge/internal/model"

	socketio "github.com/googollee/go-socket.io"
)

// Publisher persists notifications and broadcasts them to connected
// consoles. It satisfies the service layer's Notifier interface.
// Publishing never returns an error to the caller: a lost notification
// must not fail the operation that produced it.
type Publisher struct{}

// NewPublisher creates a publisher
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish writes the event row and broadcasts it. Topics in use:
// "cache" (purge activity), "connection" (credential state changes).
func (p *Publisher) Publish(topic, eventType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).WithField("topic", topic).Error("Failed to marshal notify payload")
		return
	}

	event := model.NotifyEvent{
		Topic:     topic,
		EventType: eventType,
		Payload:   string(raw),
	}
	if err := db.GetDB().Create(&event).Error; err != nil {
		log.WithError(err).WithField("topic", topic).Error("Failed to persist notify event")
		// Still broadcast; connected clients get it even if catch-up won't
	}

	BroadcastToAll(topic+":update", map[string]interface{}{
		"eventId": event.ID,
		"type":    eventType,
		"data":    payload,
	})
}

// handleRequestEvents serves incremental catch-up: the client sends the
// last event id it has seen and receives everything newer.
func handleRequestEvents(s socketio.Conn, data interface{}) {
	topic := "cache"
	var lastEventID int64
	if dataMap, ok := data.(map[string]interface{}); ok {
		if t, ok := dataMap["topic"].(string); ok && t != "" {
			topic = t
		}
		if id, ok := dataMap["lastEventId"].(float64); ok {
			lastEventID = int64(id)
		}
	}

	events, err := IncrementalEvents(topic, lastEventID, 100)
	if err != nil {
		log.WithError(err).Warn("Failed to load incremental events")
		s.Emit("events:error", map[string]interface{}{"message": "failed to load events"})
		return
	}
	s.Emit("events:catchup", map[string]interface{}{
		"topic":  topic,
		"events": events,
	})
}

// IncrementalEvents returns persisted events newer than lastEventID
func IncrementalEvents(topic string, lastEventID int64, maxCount int) ([]model.NotifyEvent, error) {
	var events []model.NotifyEvent
	err := db.GetDB().
		Where("topic = ? AND id > ?", topic, lastEventID).
		Order("id ASC").
		Limit(maxCount).
		Find(&events).Error
	return events, err
}
