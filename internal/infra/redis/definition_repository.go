package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/StruginiCrew/odyssey/internal/infra/memory"
	"github.com/StruginiCrew/odyssey/internal/input"
)

// DefinitionRepository caches raw quiz definitions in Redis as JSON blobs and
// falls back to a loader on cache miss.
// Definitions are stored as: SET quiz:def:{quizUID} {definition JSON}
type DefinitionRepository struct {
	client *redis.Client
	loader memory.DefinitionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewDefinitionRepository(client *redis.Client, loader memory.DefinitionLoader, ttl time.Duration) *DefinitionRepository {
	return &DefinitionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *DefinitionRepository) GetDefinition(ctx context.Context, quizUID string) (input.Quiz, error) {
	key := r.definitionKey(quizUID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		if quiz, err := input.ParseQuiz(raw); err == nil {
			return quiz, nil
		}
		// Unparseable cache entry; fall through to reload.
	}

	result, err, _ := r.sf.Do(quizUID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			if quiz, err := input.ParseQuiz(raw); err == nil {
				return quiz, nil
			}
		}

		quiz, err := r.loader.LoadDefinition(ctx, quizUID)
		if err != nil {
			return input.Quiz{}, err
		}

		if raw, err := json.Marshal(quiz); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return input.Quiz{}, err
	}
	return result.(input.Quiz), nil
}

func (r *DefinitionRepository) definitionKey(quizUID string) string {
	return "quiz:def:" + quizUID
}

func (r *DefinitionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
