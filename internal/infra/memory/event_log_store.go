package memory

import (
	"context"
	"sync"

	"github.com/StruginiCrew/odyssey/internal/app"
	"github.com/StruginiCrew/odyssey/internal/event"
)

// EventLogStore keeps exported event logs in memory, keyed by session id.
type EventLogStore struct {
	mu   sync.RWMutex
	logs map[string]*event.Log
}

func NewEventLogStore() *EventLogStore {
	return &EventLogStore{logs: make(map[string]*event.Log)}
}

func (s *EventLogStore) Save(_ context.Context, sessionID string, log *event.Log) error {
	events := make([]event.Event, len(log.Events))
	copy(events, log.Events)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[sessionID] = &event.Log{UID: log.UID, Version: log.Version, Events: events}
	return nil
}

func (s *EventLogStore) Load(_ context.Context, sessionID string) (*event.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.logs[sessionID]
	if !ok {
		return nil, app.ErrEventLogNotFound
	}

	events := make([]event.Event, len(log.Events))
	copy(events, log.Events)
	return &event.Log{UID: log.UID, Version: log.Version, Events: events}, nil
}
