package amqp

import (
	"testing"
	"time"
)

func TestChangeMessage_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		kind ChangeKind
		ref  string
	}{
		{name: "transaction created", kind: KindTransactionCreated, ref: "tx-42"},
		{name: "rule updated", kind: KindRuleUpdated, ref: "rule-7"},
		{name: "materialized pass", kind: KindMaterialized, ref: "2025-03"},
		{name: "import", kind: KindImported, ref: "120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewChangeMessage(tt.kind, tt.ref)
			body, err := msg.ToJSON()
			if err != nil {
				t.Fatalf("ToJSON: %v", err)
			}

			back, err := ChangeMessageFromJSON(body)
			if err != nil {
				t.Fatalf("FromJSON: %v", err)
			}
			if back.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", back.Kind, tt.kind)
			}
			if back.Ref != tt.ref {
				t.Errorf("ref = %s, want %s", back.Ref, tt.ref)
			}
			if back.Timestamp.IsZero() {
				t.Error("timestamp should be stamped")
			}
			if time.Since(back.Timestamp) > time.Minute {
				t.Errorf("timestamp too old: %s", back.Timestamp)
			}
		})
	}
}

func TestChangeMessageFromJSON_Malformed(t *testing.T) {
	if _, err := ChangeMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
