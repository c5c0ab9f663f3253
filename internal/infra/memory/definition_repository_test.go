package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/StruginiCrew/odyssey/internal/input"
)

type countingLoader struct {
	calls       int64
	definitions map[string]input.Quiz
}

func (l *countingLoader) LoadDefinition(_ context.Context, quizUID string) (input.Quiz, error) {
	atomic.AddInt64(&l.calls, 1)
	if quiz, ok := l.definitions[quizUID]; ok {
		return quiz, nil
	}
	return input.Quiz{}, ErrDefinitionNotFound
}

func TestDefinitionRepositoryCachesWithinTTL(t *testing.T) {
	loader := &countingLoader{definitions: map[string]input.Quiz{
		"q1": {UID: "q1", Version: 1},
	}}
	repo := NewDefinitionRepository(loader, time.Minute)

	for i := 0; i < 3; i++ {
		quiz, err := repo.GetDefinition(context.Background(), "q1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if quiz.UID != "q1" {
			t.Fatalf("unexpected quiz %+v", quiz)
		}
	}
	if calls := atomic.LoadInt64(&loader.calls); calls != 1 {
		t.Fatalf("expected a single loader call, got %d", calls)
	}
}

func TestDefinitionRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{definitions: map[string]input.Quiz{
		"q1": {UID: "q1", Version: 1},
	}}
	repo := NewDefinitionRepository(loader, time.Minute)

	now := time.Now()
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetDefinition(context.Background(), "q1"); err != nil {
		t.Fatalf("get: %v", err)
	}

	// jitter adds at most 10%, so two minutes is safely past expiry
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetDefinition(context.Background(), "q1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls := atomic.LoadInt64(&loader.calls); calls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", calls)
	}
}

func TestDefinitionRepositoryPropagatesLoaderError(t *testing.T) {
	repo := NewDefinitionRepository(&countingLoader{}, time.Minute)
	if _, err := repo.GetDefinition(context.Background(), "nope"); !errors.Is(err, ErrDefinitionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStaticDefinitionLoader(t *testing.T) {
	loader := NewStaticDefinitionLoader(map[string]input.Quiz{
		"q1": {UID: "q1", Version: 1},
	})

	quiz, err := loader.LoadDefinition(context.Background(), "q1")
	if err != nil || quiz.UID != "q1" {
		t.Fatalf("unexpected result: %+v %v", quiz, err)
	}
	if _, err := loader.LoadDefinition(context.Background(), "q2"); !errors.Is(err, ErrDefinitionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
