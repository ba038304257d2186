package collab

import (
	"sync"

	"github.com/algospace/algospace-api/pkg/logger"
	"go.uber.org/zap"
)

// Hub owns the set of live session rooms. Rooms are created on first join
// and torn down when the last participant leaves.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	runner Runner
}

// NewHub creates a session hub. The runner may be nil, in which case
// run_code requests are rejected.
func NewHub(runner Runner) *Hub {
	return &Hub{
		rooms:  make(map[string]*Room),
		runner: runner,
	}
}

// Room returns the room for a slug, creating and starting it if needed
func (h *Hub) Room(slug string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[slug]; ok {
		return room
	}

	room := newRoom(slug, h, h.runner)
	h.rooms[slug] = room
	go room.run()

	logger.Info("Session room created", zap.String("room", slug))
	return room
}

// RoomCount returns the number of live rooms
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

func (h *Hub) removeRoom(slug string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, slug)
	logger.Info("Session room closed", zap.String("room", slug))
}
