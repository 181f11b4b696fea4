package amqp

import (
	"encoding/json"
	"time"
)

// Event actions carried by RecordEventMessage.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordEventMessage is a lightweight notification that one record in one
// owner's ledger changed. Consumers reload the ledger from the store; the
// message intentionally carries no amounts.
type RecordEventMessage struct {
	OwnerID   string    `json:"owner_id"`
	Kind      string    `json:"kind"`
	RecordID  string    `json:"record_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordEventMessage(ownerID, kind, recordID, action string) *RecordEventMessage {
	return &RecordEventMessage{
		OwnerID:   ownerID,
		Kind:      kind,
		RecordID:  recordID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordEventMessageFromJSON creates a message from JSON bytes.
func RecordEventMessageFromJSON(data []byte) (*RecordEventMessage, error) {
	var msg RecordEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
