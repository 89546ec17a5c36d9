package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateRoom opens a new room hosted by the client.
	CommandCreateRoom CommandKind = iota
	// CommandJoinRoom adds the client to an existing waiting room.
	CommandJoinRoom
	// CommandLeaveRoom removes the client from its room.
	CommandLeaveRoom
	// CommandStartGame moves the room from waiting to active.
	CommandStartGame
	// CommandSubmitAnswer submits an answer for a stage.
	CommandSubmitAnswer
	// CommandSendMessage delivers a chat message to room members.
	CommandSendMessage
	// CommandShareClue passes a clue to the other members.
	CommandShareClue

	// CommandVoiceReady announces the client is ready for voice.
	CommandVoiceReady
	// CommandVoiceAnnounce re-announces the client to one newcomer.
	CommandVoiceAnnounce
	// CommandVoiceOffer forwards a negotiation offer.
	CommandVoiceOffer
	// CommandVoiceAnswer forwards a negotiation answer.
	CommandVoiceAnswer
	// CommandVoiceCandidate forwards a connectivity candidate.
	CommandVoiceCandidate
	// CommandVoiceSpeaking shares speaking state and volume.
	CommandVoiceSpeaking
	// CommandVoiceMute shares mute state.
	CommandVoiceMute
)

// Command represents an action requested by a client.
type Command struct {
	Kind    CommandKind
	Room    string
	Name    string
	Stage   int
	Answer  string
	Message Message

	// Voice signaling fields.
	Target   string
	Payload  json.RawMessage
	Speaking bool
	Volume   float64
	Muted    bool
}
