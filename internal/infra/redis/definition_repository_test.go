package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/StruginiCrew/odyssey/internal/infra/memory"
	"github.com/StruginiCrew/odyssey/internal/input"
)

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

type countingLoader struct {
	memory.DefinitionLoader
	calls int
}

func (l *countingLoader) LoadDefinition(ctx context.Context, quizUID string) (input.Quiz, error) {
	l.calls++
	return l.DefinitionLoader.LoadDefinition(ctx, quizUID)
}

func sampleDefinition() input.Quiz {
	return input.Quiz{
		UID:     "quiz-1",
		Version: 1,
		Mode:    input.QuizModeOpen,
		Sections: []input.Section{
			{
				ID: 1,
				Questions: []input.Question{
					{
						ID:      1,
						Content: "any thoughts?",
						Mode:    input.QuestionModeInput,
					},
				},
			},
		},
	}
}

func TestDefinitionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		DefinitionLoader: memory.NewStaticDefinitionLoader(map[string]input.Quiz{
			"quiz-1": sampleDefinition(),
		}),
	}
	repo := NewDefinitionRepository(newClient(mr), loader, time.Minute)

	quiz, err := repo.GetDefinition(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get definition: %v", err)
	}
	if quiz.UID != "quiz-1" || len(quiz.Sections) != 1 {
		t.Fatalf("unexpected definition: %+v", quiz)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit the redis cache, loader not incremented.
	if _, err := repo.GetDefinition(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get definition: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}

	if !mr.Exists("quiz:def:quiz-1") {
		t.Fatalf("expected definition cached under quiz:def:quiz-1")
	}
}

func TestDefinitionRepositoryReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		DefinitionLoader: memory.NewStaticDefinitionLoader(map[string]input.Quiz{
			"quiz-1": sampleDefinition(),
		}),
	}
	repo := NewDefinitionRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetDefinition(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get definition: %v", err)
	}

	// jitter adds at most 10%, so two minutes is safely past expiry
	mr.FastForward(2 * time.Minute)

	if _, err := repo.GetDefinition(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get definition: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", loader.calls)
	}
}

func TestDefinitionRepositoryPropagatesLoaderError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		DefinitionLoader: memory.NewStaticDefinitionLoader(nil),
	}
	repo := NewDefinitionRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetDefinition(context.Background(), "missing"); !errors.Is(err, memory.ErrDefinitionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
