package core

import (
	"strings"
	"sync"
)

// LeaveResult describes a completed leave.
type LeaveResult struct {
	Code      string
	Name      string
	Remaining []Member
	// Closed is true when the leaver was the last member and the room was removed.
	Closed bool
}

// RoomStore owns every live room, keyed by code.
//
// Lock order is room.mu before store.mu; the store lock is never held while
// waiting on a room lock.
type RoomStore struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	newCode    func() string
	maxMembers int
}

// NewRoomStore builds an empty store. newCode must return random codes; the
// store retries on collision.
func NewRoomStore(maxMembers int, newCode func() string) *RoomStore {
	return &RoomStore{
		rooms:      make(map[string]*Room),
		newCode:    newCode,
		maxMembers: maxMembers,
	}
}

// CreateRoom registers a new waiting room hosted by connID.
func (s *RoomStore) CreateRoom(connID, name string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.newCode()
	for {
		if _, taken := s.rooms[code]; !taken {
			break
		}
		code = s.newCode()
	}
	room := NewRoom(code, connID, name)
	s.rooms[code] = room
	return room
}

// JoinRoom appends connID as a non-host member.
func (s *RoomStore) JoinRoom(code, connID, name string) (RoomState, error) {
	room, ok := s.Get(code)
	if !ok {
		return RoomState{}, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if _, err := s.joinLocked(room, connID, name); err != nil {
		return RoomState{}, err
	}
	return room.state(), nil
}

// joinLocked is JoinRoom for a room whose lock the caller holds. Joining a
// room one is already in is a no-op and reports added = false.
func (s *RoomStore) joinLocked(room *Room, connID, name string) (added bool, err error) {
	switch {
	case room.closed:
		return false, ErrRoomNotFound
	case room.hasMember(connID):
		return false, nil
	case room.phase != PhaseWaiting:
		return false, ErrAlreadyStarted
	case len(room.members) >= s.maxMembers:
		return false, ErrRoomFull
	}
	room.addMember(connID, name)
	return true, nil
}

// Leave removes connID from whichever room holds it. A second call for the
// same connection is a no-op and returns false.
func (s *RoomStore) Leave(connID string) (LeaveResult, bool) {
	for _, room := range s.Rooms() {
		room.mu.Lock()
		if room.closed || !room.hasMember(connID) {
			room.mu.Unlock()
			continue
		}
		res, ok := s.leaveLocked(room, connID)
		room.mu.Unlock()
		return res, ok
	}
	return LeaveResult{}, false
}

// leaveLocked is Leave for a room whose lock the caller holds.
func (s *RoomStore) leaveLocked(room *Room, connID string) (LeaveResult, bool) {
	member, ok := room.removeMember(connID)
	if !ok {
		return LeaveResult{}, false
	}

	res := LeaveResult{
		Code:      room.Code,
		Name:      member.Name,
		Remaining: room.membersCopy(),
	}
	if len(room.members) == 0 {
		room.closed = true
		res.Closed = true
		s.mu.Lock()
		if s.rooms[room.Code] == room {
			delete(s.rooms, room.Code)
		}
		s.mu.Unlock()
	}
	return res, true
}

// Get returns the room registered under code. Codes are matched case-insensitively.
func (s *RoomStore) Get(code string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[strings.ToUpper(strings.TrimSpace(code))]
	return room, ok
}

// Count returns the number of live rooms.
func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Rooms returns the live rooms at call time.
func (s *RoomStore) Rooms() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}
