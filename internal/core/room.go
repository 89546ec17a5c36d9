package core

import (
	"sync"
	"time"
)

// Phase is a room's position in the mission lifecycle.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseActive   Phase = "active"
	PhaseFinished Phase = "finished"
)

// Member is a room's view of a connection.
type Member struct {
	ID     string
	Name   string
	IsHost bool
}

// SolvedStage records when a stage was passed.
type SolvedStage struct {
	Stage    int
	SolvedAt time.Time
}

// RoomState is a copy of a room taken under its lock.
type RoomState struct {
	Code         string
	Members      []Member
	Phase        Phase
	CurrentStage int
	StartTime    time.Time
	EndTime      time.Time
	Solved       []SolvedStage
}

// Room groups the members of one mission. All fields below mu are guarded by it.
type Room struct {
	Code string

	mu           sync.Mutex
	members      []Member
	phase        Phase
	currentStage int
	startTime    time.Time
	endTime      time.Time
	solved       []SolvedStage
	voice        map[string]*VoicePeer
	// closed is set once the last member leaves and the room is unlinked.
	closed bool
}

// NewRoom constructs a waiting room hosted by the given connection.
func NewRoom(code, hostID, hostName string) *Room {
	return &Room{
		Code:         code,
		members:      []Member{{ID: hostID, Name: hostName, IsHost: true}},
		phase:        PhaseWaiting,
		currentStage: 1,
		voice:        make(map[string]*VoicePeer),
	}
}

// State returns a snapshot of the room.
func (r *Room) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state()
}

func (r *Room) state() RoomState {
	return RoomState{
		Code:         r.Code,
		Members:      r.membersCopy(),
		Phase:        r.phase,
		CurrentStage: r.currentStage,
		StartTime:    r.startTime,
		EndTime:      r.endTime,
		Solved:       append([]SolvedStage(nil), r.solved...),
	}
}

func (r *Room) membersCopy() []Member {
	return append([]Member(nil), r.members...)
}

func (r *Room) hasMember(id string) bool {
	return r.memberIndex(id) >= 0
}

func (r *Room) memberIndex(id string) int {
	for i, m := range r.members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// addMember appends a non-host member.
func (r *Room) addMember(id, name string) {
	r.members = append(r.members, Member{ID: id, Name: name})
}

// removeMember deletes a member, keeping order. Returns the removed member.
func (r *Room) removeMember(id string) (Member, bool) {
	idx := r.memberIndex(id)
	if idx < 0 {
		return Member{}, false
	}
	m := r.members[idx]
	r.members = append(r.members[:idx], r.members[idx+1:]...)
	delete(r.voice, id)
	return m, true
}

// Size returns the number of members.
func (r *Room) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}
