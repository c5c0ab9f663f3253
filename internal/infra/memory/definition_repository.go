package memory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/StruginiCrew/odyssey/internal/input"
)

// ErrDefinitionNotFound is returned when no definition exists for a quiz uid.
var ErrDefinitionNotFound = errors.New("quiz definition not found")

// DefinitionLoader fetches raw quiz definitions from a backing store
// (e.g., Postgres).
type DefinitionLoader interface {
	LoadDefinition(ctx context.Context, quizUID string) (input.Quiz, error)
}

// DefinitionRepository caches definitions with TTL to avoid repeated DB hits.
type DefinitionRepository struct {
	loader DefinitionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedDefinition
}

type cachedDefinition struct {
	quiz      input.Quiz
	expiresAt time.Time
}

func NewDefinitionRepository(loader DefinitionLoader, ttl time.Duration) *DefinitionRepository {
	return &DefinitionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedDefinition),
	}
}

func (r *DefinitionRepository) GetDefinition(ctx context.Context, quizUID string) (input.Quiz, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[quizUID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.quiz, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(quizUID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[quizUID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.quiz, nil
		}
		r.mu.RUnlock()

		quiz, err := r.loader.LoadDefinition(ctx, quizUID)
		if err != nil {
			return input.Quiz{}, err
		}

		r.mu.Lock()
		r.cache[quizUID] = cachedDefinition{
			quiz:      quiz,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return input.Quiz{}, err
	}
	return result.(input.Quiz), nil
}

func (r *DefinitionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticDefinitionLoader is a simple loader backed by an in-memory map
// (useful for tests/demos).
type StaticDefinitionLoader struct {
	definitions map[string]input.Quiz
}

func NewStaticDefinitionLoader(definitions map[string]input.Quiz) *StaticDefinitionLoader {
	return &StaticDefinitionLoader{definitions: definitions}
}

func (l *StaticDefinitionLoader) LoadDefinition(_ context.Context, quizUID string) (input.Quiz, error) {
	if quiz, ok := l.definitions[quizUID]; ok {
		return quiz, nil
	}
	return input.Quiz{}, ErrDefinitionNotFound
}
