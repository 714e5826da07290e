package memory

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"party-trivia-service/internal/app"
	"party-trivia-service/internal/domain"
)

// RoomStore is an in-memory implementation of app.RoomRepository. Codes are
// minted by rejection sampling against the live set; with 10,000 possible
// codes and a handful of concurrent rooms the loop terminates quickly.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*app.Room
	rnd   *rand.Rand
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*app.Room),
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *RoomStore) Create(hostID string, questions []domain.Question) (*app.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.freeCodeLocked()
	room := app.NewRoom(code, hostID, questions)
	s.rooms[code] = room
	return room, nil
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
	delete(s.rooms, code)
}

// Count reports the number of active rooms.
func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *RoomStore) freeCodeLocked() string {
	for {
		code := fmt.Sprintf("%04d", s.rnd.Intn(10000))
		if _, taken := s.rooms[code]; !taken {
			return code
		}
	}
}
