package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the account stream
const (
	EventAccountDeleted = "account_deleted"
)

// Stream names
const (
	StreamAccount = "stream:account"
)

// Consumer group name for account workers
const (
	ConsumerGroupAccount = "account_workers"
)

// AccountEvent is published after an account and its content are gone.
// The worker cleans up what lives outside the database.
type AccountEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	UserID    string `json:"user_id"`
	HasAvatar bool   `json:"has_avatar,omitempty"`
}

// NewAccountDeletedEvent creates an event for a removed account. hasAvatar is
// false when the user kept the generated avatar.
func NewAccountDeletedEvent(userID string, hasAvatar bool) AccountEvent {
	return AccountEvent{
		Type:      EventAccountDeleted,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
		HasAvatar: hasAvatar,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so the event is JSON in a "data" field.
func (e AccountEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseAccountEvent parses an AccountEvent from Redis stream message values.
func ParseAccountEvent(values map[string]interface{}) (AccountEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return AccountEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event AccountEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return AccountEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
