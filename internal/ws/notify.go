package ws

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Notify encodes an event and queues it for userID.
func (h *Hub) Notify(userID, eventType string, data any) {
	if h == nil {
		return
	}
	b, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Warn("ws event encode failed", zap.String("type", eventType), zap.Error(err))
		return
	}
	h.SendTo(userID, b)
}
