package amqp

import (
	"encoding/json"
	"time"
)

// Change operations carried on the wire.
const (
	OpCreate = "create"
	OpDelete = "delete"
)

// LedgerChangeMessage tells the mirror worker that one record changed.
// It carries only owner, id and op; the worker fetches current state
// from the backing store.
type LedgerChangeMessage struct {
	Owner     string    `json:"owner"`
	ID        int64     `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangeMessage(owner string, id int64, op string) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Owner:     owner,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
