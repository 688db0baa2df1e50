package service

import "time"

// Publisher fans events out to realtime subscribers. ws.Hub implements it.
type Publisher interface {
	Publish(v any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(any) {}

const (
	EventStockUpdate = "stock_update"
	EventLowStock    = "low_stock"
	EventOrderUpdate = "order_update"
	EventUserStatus  = "user_status_update"
	EventWallet      = "wallet_update"
)

// Event is the JSON envelope broadcast to websocket clients.
type Event struct {
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newEvent(typ, action string, data any, message string) Event {
	return Event{Type: typ, Action: action, Data: data, Message: message, Timestamp: time.Now()}
}
