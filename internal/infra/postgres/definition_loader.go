package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/StruginiCrew/odyssey/internal/input"
)

// DefinitionLoader loads raw quiz definition JSONB from Postgres.
type DefinitionLoader struct {
	pool *pgxpool.Pool
}

func NewDefinitionLoader(pool *pgxpool.Pool) *DefinitionLoader {
	return &DefinitionLoader{pool: pool}
}

func (l *DefinitionLoader) LoadDefinition(ctx context.Context, quizUID string) (input.Quiz, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE uid=$1`, quizUID).Scan(&raw)
	if err != nil {
		return input.Quiz{}, fmt.Errorf("load quiz definition: %w", err)
	}
	return input.ParseQuiz(raw)
}
