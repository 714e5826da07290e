package redis

import (
	"testing"
	"time"

	"party-trivia-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRoomStoreReservesAndReleasesCodes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	store := NewRoomStore(client, time.Minute)

	room, err := store.Create("host", sampleQuestions())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("room:code:" + room.Code()) {
		t.Fatalf("expected redis reservation for code %q", room.Code())
	}

	store.Delete(room.Code())
	if mr.Exists("room:code:" + room.Code()) {
		t.Fatalf("expected reservation removed")
	}
	if _, ok := store.Get(room.Code()); ok {
		t.Fatalf("expected room removed locally")
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{{Text: "Capital of France?", CorrectAnswer: "Paris"}}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
