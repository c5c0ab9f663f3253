package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/StruginiCrew/odyssey/internal/app"
	"github.com/StruginiCrew/odyssey/internal/event"
)

// EventLogStore persists exported event logs as JSONB rows keyed by session id.
type EventLogStore struct {
	pool *pgxpool.Pool
}

func NewEventLogStore(pool *pgxpool.Pool) *EventLogStore {
	return &EventLogStore{pool: pool}
}

func (s *EventLogStore) Save(ctx context.Context, sessionID string, log *event.Log) error {
	raw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal event log: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO event_logs (session_id, data) VALUES ($1, $2)
		 ON CONFLICT (session_id) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`,
		sessionID, raw)
	if err != nil {
		return fmt.Errorf("save event log: %w", err)
	}
	return nil
}

func (s *EventLogStore) Load(ctx context.Context, sessionID string) (*event.Log, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM event_logs WHERE session_id=$1`, sessionID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, app.ErrEventLogNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load event log: %w", err)
	}
	return event.ParseLog(raw)
}
