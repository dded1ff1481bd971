package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SyncRequestMessage asks a worker to run the synchronizer once. It carries
// no data: the worker reads the whole store itself.
type SyncRequestMessage struct {
	RequestID   string    `json:"request_id"`
	RequestedBy string    `json:"requested_by"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewSyncRequestMessage(requestedBy string) *SyncRequestMessage {
	return &SyncRequestMessage{
		RequestID:   uuid.NewString(),
		RequestedBy: requestedBy,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SyncRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncRequestMessageFromJSON decodes a message, rejecting one without an id.
func SyncRequestMessageFromJSON(data []byte) (*SyncRequestMessage, error) {
	var msg SyncRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.RequestID == "" {
		return nil, errors.New("sync request without request_id")
	}
	return &msg, nil
}
