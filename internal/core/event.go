package core

import (
	"encoding/json"
	"time"
)

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomCreated confirms room creation to its host.
	EventRoomCreated EventKind = iota
	// EventRoomJoined confirms a join to the joiner.
	EventRoomJoined
	// EventJoinError rejects a join or create request.
	EventJoinError
	// EventPlayerJoined notifies members about a new member.
	EventPlayerJoined
	// EventPlayerLeft notifies members about a departure.
	EventPlayerLeft
	// EventGameStarted notifies members the mission clock is running.
	EventGameStarted
	// EventPuzzleSolved notifies members a stage was passed.
	EventPuzzleSolved
	// EventWrongAnswer tells the submitter the answer was rejected.
	EventWrongAnswer
	// EventGameCompleted carries the mission summary.
	EventGameCompleted
	// EventNewMessage is a chat message in a room.
	EventNewMessage
	// EventClueShared is a clue passed between members.
	EventClueShared
	// EventError notifies a client about a rejected request.
	EventError

	// Voice events
	// EventVoiceUserReady announces a peer ready for voice.
	EventVoiceUserReady
	// EventVoiceRequestAnnounce asks a member to announce itself to a newcomer.
	EventVoiceRequestAnnounce
	// EventVoiceOffer carries a negotiation offer.
	EventVoiceOffer
	// EventVoiceAnswer carries a negotiation answer.
	EventVoiceAnswer
	// EventVoiceCandidate carries a connectivity candidate.
	EventVoiceCandidate
	// EventVoiceUserSpeaking carries speaking state.
	EventVoiceUserSpeaking
	// EventVoiceUserMuted carries mute state.
	EventVoiceUserMuted
	// EventVoiceUserLeft tells members a peer is gone.
	EventVoiceUserLeft
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Room    string
	User    string // display name the event is about
	Members []Member
	State   *RoomState
	Answer  *AnswerResult
	Summary *Summary
	Message Message
	Text    string // human-readable notice
	Error   *CoreError
	Voice   *VoiceEvent // non-nil for voice events
}

// VoiceEvent holds data specific to voice signaling events.
type VoiceEvent struct {
	From     string // connection id of the originating peer
	Name     string
	NewPeer  string // for EventVoiceRequestAnnounce
	Payload  json.RawMessage
	Speaking bool
	Volume   float64
	Muted    bool
}

// StartedAt is the mission start carried by EventGameStarted.
func (e *Event) StartedAt() time.Time {
	if e.State == nil {
		return time.Time{}
	}
	return e.State.StartTime
}
