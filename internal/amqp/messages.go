package amqp

import (
	"encoding/json"
	"time"
)

// GoalReviewMessage asks the worker to re-derive one goal's status.
// It carries only the ID and version, the worker fetches the full goal
// from the database.
type GoalReviewMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewGoalReviewMessage creates a new review message with just ID and version
func NewGoalReviewMessage(id, version int64) *GoalReviewMessage {
	return &GoalReviewMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *GoalReviewMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// GoalReviewMessageFromJSON creates a message from JSON bytes
func GoalReviewMessageFromJSON(data []byte) (*GoalReviewMessage, error) {
	var msg GoalReviewMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
