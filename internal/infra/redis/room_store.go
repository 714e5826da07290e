package redis

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"party-trivia-service/internal/app"
	"party-trivia-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RoomStore is a Redis-aware implementation of app.RoomRepository.
// Notes:
//   - Room aggregates stay in a local in-memory map; the existing in-process
//     phase machine and broadcast logic are reused unchanged.
//   - Redis reserves codes via SETNX so two instances cannot mint the same
//     live code, and marks room liveness with a TTL'd key.
//   - For true distribution you'd pair this with a pub/sub projector that
//     fans out room events across instances.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	rooms  map[string]*app.Room
	rnd    *rand.Rand
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *RoomStore) Create(hostID string, questions []domain.Question) (*app.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	for {
		code := fmt.Sprintf("%04d", s.rnd.Intn(10000))
		if _, taken := s.rooms[code]; taken {
			continue
		}
		reserved, err := s.client.SetNX(ctx, s.key(code), "1", s.ttl).Result()
		if err != nil {
			// best-effort registry; local uniqueness still holds
			reserved = true
		}
		if !reserved {
			continue
		}
		room := app.NewRoom(code, hostID, questions)
		s.rooms[code] = room
		return room, nil
	}
}

func (s *RoomStore) Get(code string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; !ok {
		return
	}
	delete(s.rooms, code)
	_ = s.client.Del(context.Background(), s.key(code)).Err()
}

func (s *RoomStore) key(code string) string {
	return "room:code:" + code
}
