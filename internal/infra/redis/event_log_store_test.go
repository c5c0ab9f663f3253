package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/StruginiCrew/odyssey/internal/app"
	"github.com/StruginiCrew/odyssey/internal/event"
)

func TestEventLogStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewEventLogStore(newClient(mr), time.Hour)

	log := event.NewLog("quiz-1", 2)
	log.Push(event.SelectAnswers(1, []int{2}))
	log.Push(event.InputAnswers(2, []string{"hello"}))

	if err := store.Save(context.Background(), "session-1", log); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.UID != "quiz-1" || loaded.Version != 2 || loaded.Generation() != 2 {
		t.Fatalf("unexpected log: %+v", loaded)
	}
	if loaded.Events[0].Kind != event.KindSelectAnswers {
		t.Fatalf("unexpected first event: %+v", loaded.Events[0])
	}
}

func TestEventLogStoreMiss(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewEventLogStore(newClient(mr), time.Hour)
	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, app.ErrEventLogNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEventLogStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewEventLogStore(newClient(mr), time.Minute)

	if err := store.Save(context.Background(), "session-1", event.NewLog("quiz-1", 1)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:eventlog:session-1") {
		t.Fatalf("expected key written")
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Load(context.Background(), "session-1"); !errors.Is(err, app.ErrEventLogNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}
