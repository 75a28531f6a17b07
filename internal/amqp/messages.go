package amqp

import (
	"encoding/json"
	"time"

	"financas/internal/core"
)

// RecordSavedMessage announces that a month document was written. It carries
// only the coordinates; the worker fetches the full record from the source
// backend.
type RecordSavedMessage struct {
	UserID    string        `json:"userId"`
	MonthKey  core.MonthKey `json:"monthKey"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewRecordSavedMessage creates a saved-month notification.
func NewRecordSavedMessage(uid string, key core.MonthKey) *RecordSavedMessage {
	return &RecordSavedMessage{
		UserID:    uid,
		MonthKey:  key,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSavedMessageFromJSON creates a message from JSON bytes
func RecordSavedMessageFromJSON(data []byte) (*RecordSavedMessage, error) {
	var msg RecordSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
