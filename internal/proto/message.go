package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeCreateRoom   = "create-room"
	InboundTypeJoinRoom     = "join-room"
	InboundTypeLeaveRoom    = "leave-room"
	InboundTypeStartGame    = "start-game"
	InboundTypeSubmitAnswer = "submit-answer"
	InboundTypeSendMessage  = "send-message"
	InboundTypeShareClue    = "share-clue"

	InboundTypeVoiceReady     = "voice-ready"
	InboundTypeVoiceAnnounce  = "voice-announce"
	InboundTypeVoiceOffer     = "voice-offer"
	InboundTypeVoiceAnswer    = "voice-answer"
	InboundTypeVoiceCandidate = "voice-ice-candidate"
	InboundTypeVoiceSpeaking  = "voice-speaking"
	InboundTypeVoiceMute      = "voice-mute"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNameRoomCreated    = "room-created"
	EventNameRoomJoined     = "room-joined"
	EventNameJoinError      = "join-error"
	EventNamePlayerJoined   = "player-joined"
	EventNamePlayerLeft     = "player-left"
	EventNameGameStarted    = "game-started"
	EventNamePuzzleSolved   = "puzzle-solved"
	EventNameWrongAnswer    = "wrong-answer"
	EventNameGameCompleted  = "game-completed"
	EventNameNewMessage     = "new-message"
	EventNameClueShared     = "clue-shared"
	EventNameVoiceUserReady = "voice-user-ready"
	EventNameVoiceRequest   = "voice-request-announce"
	EventNameVoiceOffer     = "voice-offer"
	EventNameVoiceAnswer    = "voice-answer"
	EventNameVoiceCandidate = "voice-ice-candidate"
	EventNameVoiceSpeaking  = "voice-user-speaking"
	EventNameVoiceMuted     = "voice-user-muted"
	EventNameVoiceUserLeft  = "voice-user-left"
)

// CreateRoomData opens a room.
type CreateRoomData struct {
	DisplayName string `json:"displayName"`
}

// JoinRoomData requests to join a specific room.
type JoinRoomData struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
}

// RoomRef names a room for start-game and leave-room.
type RoomRef struct {
	Code string `json:"code"`
}

// SubmitAnswerData is an answer attempt. Answer may be a JSON string or number.
type SubmitAnswerData struct {
	Code       string          `json:"code"`
	StageIndex int             `json:"stageIndex"`
	Answer     json.RawMessage `json:"answer"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName,omitempty"`
	Text        string `json:"text"`
}

// ShareClueData passes a clue to the rest of the room.
type ShareClueData struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// VoiceTargetData addresses one peer. Blob carries the offer, answer or candidate.
type VoiceTargetData struct {
	Target    string          `json:"target"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// VoiceSpeakingData reports local speaking detection.
type VoiceSpeakingData struct {
	Speaking bool    `json:"isSpeaking"`
	Volume   float64 `json:"volume"`
}

// VoiceMuteData reports local mute state.
type VoiceMuteData struct {
	Muted bool `json:"muted"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Member is a room member as seen by clients.
type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsHost      bool   `json:"isHost"`
}

// SolvedStage records one passed stage.
type SolvedStage struct {
	StageIndex int   `json:"stageIndex"`
	SolvedAt   int64 `json:"solvedAt"` // unix millis
}

// Room is the full room state sent on create and join.
type Room struct {
	Code         string        `json:"code"`
	Members      []Member      `json:"members"`
	Phase        string        `json:"phase"`
	CurrentStage int           `json:"currentStage"`
	StartTime    int64         `json:"startTime,omitempty"` // unix millis
	EndTime      int64         `json:"endTime,omitempty"`   // unix millis
	SolvedStages []SolvedStage `json:"solvedStages"`
}

// EventMembership notifies that the member list changed.
type EventMembership struct {
	Members        []Member `json:"members"`
	NewMemberName  string   `json:"newMemberName,omitempty"`
	LeftMemberName string   `json:"leftMemberName,omitempty"`
}

// EventGameStarted notifies that the mission clock started.
type EventGameStarted struct {
	StartTime    int64 `json:"startTime"`
	CurrentStage int   `json:"currentStage"`
}

// EventPuzzleSolved notifies that a stage was passed.
type EventPuzzleSolved struct {
	StageIndex int    `json:"stageIndex"`
	NextStage  int    `json:"nextStage"`
	SolvedBy   string `json:"solvedBy,omitempty"`
	Message    string `json:"message"`
}

// EventNotice carries a human-readable message.
type EventNotice struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// EventGameCompleted is the mission summary.
type EventGameCompleted struct {
	FinalTime    int64         `json:"finalTime"`
	MaxTime      int64         `json:"maxTime"`
	Outcome      string        `json:"outcome"`
	Members      []Member      `json:"members"`
	SolvedStages []SolvedStage `json:"solvedStages"`
}

// EventMessage is a chat message.
type EventMessage struct {
	DisplayName string `json:"displayName"`
	Text        string `json:"text"`
	Timestamp   int64  `json:"timestamp"` // unix millis
}

// EventClue is a clue shared by another member.
type EventClue struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// EventVoicePeer identifies a peer in voice events.
type EventVoicePeer struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName,omitempty"`
}

// EventVoiceRequestAnnounce asks the receiver to announce itself to a newcomer.
type EventVoiceRequestAnnounce struct {
	NewConnectionID string `json:"newConnectionId"`
	Code            string `json:"code"`
}

// EventVoiceSignal carries an opaque negotiation blob.
type EventVoiceSignal struct {
	From      string          `json:"from"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// EventVoiceSpeaking carries speaking state.
type EventVoiceSpeaking struct {
	ConnectionID string  `json:"connectionId"`
	Speaking     bool    `json:"isSpeaking"`
	Volume       float64 `json:"volume"`
}

// EventVoiceMuted carries mute state.
type EventVoiceMuted struct {
	ConnectionID string `json:"connectionId"`
	Muted        bool   `json:"muted"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Status is the side-band monitoring payload.
type Status struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	ActiveRooms int    `json:"activeRooms"`
	Players     int    `json:"players"`
	Connections int    `json:"connections"`
	VoicePeers  int    `json:"voicePeers"`
	Missions    int64  `json:"missions"`
	Protocol    int    `json:"protocol"`
}

// Stage is a stage title as exposed to clients; answers are never sent.
type Stage struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// Mission is an archived mission result.
type Mission struct {
	Code         string        `json:"code"`
	FinalTime    int64         `json:"finalTime"`
	MaxTime      int64         `json:"maxTime"`
	Outcome      string        `json:"outcome"`
	Members      []string      `json:"members"`
	SolvedStages []SolvedStage `json:"solvedStages"`
	CompletedAt  int64         `json:"completedAt"` // unix millis
}
