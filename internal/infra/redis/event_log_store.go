package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/StruginiCrew/odyssey/internal/app"
	"github.com/StruginiCrew/odyssey/internal/event"
)

// EventLogStore persists exported event logs in Redis with a TTL, so a
// session can be resumed on any instance while it is still live.
// Logs are stored as: SET quiz:eventlog:{sessionID} {log JSON}
type EventLogStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventLogStore(client *redis.Client, ttl time.Duration) *EventLogStore {
	return &EventLogStore{client: client, ttl: ttl}
}

func (s *EventLogStore) Save(ctx context.Context, sessionID string, log *event.Log) error {
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal event log: %w", err)
	}
	if err := s.client.Set(ctx, s.logKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save event log: %w", err)
	}
	return nil
}

func (s *EventLogStore) Load(ctx context.Context, sessionID string) (*event.Log, error) {
	raw, err := s.client.Get(ctx, s.logKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", sessionID, app.ErrEventLogNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load event log: %w", err)
	}
	return event.ParseLog(raw)
}

func (s *EventLogStore) logKey(sessionID string) string {
	return "quiz:eventlog:" + sessionID
}
