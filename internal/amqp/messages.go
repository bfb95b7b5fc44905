package amqp

import (
	"encoding/json"
	"time"
)

// ChangeKind labels what mutated.
type ChangeKind string

const (
	KindTransactionCreated ChangeKind = "transaction_created"
	KindTransactionUpdated ChangeKind = "transaction_updated"
	KindTransactionDeleted ChangeKind = "transaction_deleted"
	KindRuleUpdated        ChangeKind = "rule_updated"
	KindMaterialized       ChangeKind = "materialized"
	KindImported           ChangeKind = "imported"
)

// ChangeMessage is a lightweight fire-and-forget notification that engine
// state changed. Consumers re-read from the store; the message carries no
// payload beyond the entity reference.
type ChangeMessage struct {
	Kind      ChangeKind `json:"kind"`
	Ref       string     `json:"ref"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewChangeMessage builds a message stamped with the current time.
func NewChangeMessage(kind ChangeKind, ref string) *ChangeMessage {
	return &ChangeMessage{Kind: kind, Ref: ref, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message from JSON bytes.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
