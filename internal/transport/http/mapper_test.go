package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wireroom-server/internal/core"
	"github.com/vovakirdan/wireroom-server/internal/proto"
)

func TestAnswerText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"2940"`, "2940"},
		{`2940`, "2940"},
		{`2.94`, "2.94"},
		{`" huit "`, " huit "},
		{`null`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, answerText(json.RawMessage(tt.raw)))
		})
	}
}

func TestInboundToCommand(t *testing.T) {
	cmd, perr := inboundToCommand(proto.Inbound{
		Type: proto.InboundTypeSubmitAnswer,
		Data: json.RawMessage(`{"code":"ABC234","stageIndex":2,"answer":8}`),
	})
	require.Nil(t, perr)
	assert.Equal(t, core.CommandSubmitAnswer, cmd.Kind)
	assert.Equal(t, "ABC234", cmd.Room)
	assert.Equal(t, 2, cmd.Stage)
	assert.Equal(t, "8", cmd.Answer)

	cmd, perr = inboundToCommand(proto.Inbound{
		Type: proto.InboundTypeVoiceCandidate,
		Data: json.RawMessage(`{"target":"c2","candidate":{"candidate":"udp 1"}}`),
	})
	require.Nil(t, perr)
	assert.Equal(t, core.CommandVoiceCandidate, cmd.Kind)
	assert.Equal(t, "c2", cmd.Target)
	assert.JSONEq(t, `{"candidate":"udp 1"}`, string(cmd.Payload))

	cmd, perr = inboundToCommand(proto.Inbound{Type: proto.InboundTypeLeaveRoom})
	require.Nil(t, perr)
	assert.Equal(t, core.CommandLeaveRoom, cmd.Kind)

	_, perr = inboundToCommand(proto.Inbound{Type: "unknown"})
	require.NotNil(t, perr)
	assert.Equal(t, errCodeInvalidMessage, perr.Code)
}

func TestOutboundFromEvent(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	out := outboundFromEvent(&core.Event{
		Kind: core.EventGameCompleted,
		Summary: &core.Summary{
			FinalTime: 1900,
			MaxTime:   1800,
			Outcome:   core.OutcomeTimeout,
			Members:   []core.Member{{ID: "c1", Name: "alice", IsHost: true}},
			Solved:    []core.SolvedStage{{Stage: 1, SolvedAt: start}},
		},
	})
	assert.Equal(t, proto.OutboundTypeEvent, out.Type)
	assert.Equal(t, proto.EventNameGameCompleted, out.Event)
	done, ok := out.Data.(proto.EventGameCompleted)
	require.True(t, ok)
	assert.Equal(t, "timeout", done.Outcome)
	assert.Equal(t, start.UnixMilli(), done.SolvedStages[0].SolvedAt)

	out = outboundFromEvent(&core.Event{Kind: core.EventError, Error: &core.CoreError{Code: core.ErrCodeNotInRoom, Message: "nope"}})
	assert.Equal(t, proto.OutboundTypeError, out.Type)
	require.NotNil(t, out.Error)
	assert.Equal(t, "not_in_room", out.Error.Code)

	out = outboundFromEvent(&core.Event{
		Kind:  core.EventVoiceRequestAnnounce,
		Room:  "ABC234",
		Voice: &core.VoiceEvent{NewPeer: "c9"},
	})
	assert.Equal(t, proto.EventNameVoiceRequest, out.Event)
	assert.Equal(t, proto.EventVoiceRequestAnnounce{NewConnectionID: "c9", Code: "ABC234"}, out.Data)

	room := outboundFromEvent(&core.Event{Kind: core.EventRoomCreated, State: &core.RoomState{Code: "ABC234", Phase: core.PhaseWaiting}})
	data, err := json.Marshal(room)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"members":[]`)
	assert.NotContains(t, string(data), "startTime")
}

func TestOutboundEventNamesAndPayloads(t *testing.T) {
	voice := &core.VoiceEvent{From: "c1", Name: "alice"}
	tests := []struct {
		kind    core.EventKind
		name    string
		payload any
	}{
		{core.EventRoomCreated, "room-created", proto.Room{}},
		{core.EventRoomJoined, "room-joined", proto.Room{}},
		{core.EventJoinError, "join-error", proto.EventNotice{}},
		{core.EventPlayerJoined, "player-joined", proto.EventMembership{}},
		{core.EventPlayerLeft, "player-left", proto.EventMembership{}},
		{core.EventGameStarted, "game-started", proto.EventGameStarted{}},
		{core.EventPuzzleSolved, "puzzle-solved", proto.EventPuzzleSolved{}},
		{core.EventWrongAnswer, "wrong-answer", proto.EventNotice{}},
		{core.EventGameCompleted, "game-completed", proto.EventGameCompleted{}},
		{core.EventNewMessage, "new-message", proto.EventMessage{}},
		{core.EventClueShared, "clue-shared", proto.EventClue{}},
		{core.EventVoiceUserReady, "voice-user-ready", proto.EventVoicePeer{}},
		{core.EventVoiceRequestAnnounce, "voice-request-announce", proto.EventVoiceRequestAnnounce{}},
		{core.EventVoiceOffer, "voice-offer", proto.EventVoiceSignal{}},
		{core.EventVoiceAnswer, "voice-answer", proto.EventVoiceSignal{}},
		{core.EventVoiceCandidate, "voice-ice-candidate", proto.EventVoiceSignal{}},
		{core.EventVoiceUserSpeaking, "voice-user-speaking", proto.EventVoiceSpeaking{}},
		{core.EventVoiceUserMuted, "voice-user-muted", proto.EventVoiceMuted{}},
		{core.EventVoiceUserLeft, "voice-user-left", proto.EventVoicePeer{}},
	}

	seen := make(map[string]bool)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := outboundFromEvent(&core.Event{
				Kind:  tt.kind,
				Room:  "ABC234",
				State: &core.RoomState{Code: "ABC234"},
				Voice: voice,
			})
			assert.Equal(t, proto.OutboundTypeEvent, out.Type)
			assert.Equal(t, tt.name, out.Event)
			assert.IsType(t, tt.payload, out.Data)
			assert.False(t, seen[out.Event], "event name %q reused", out.Event)
			seen[out.Event] = true
		})
	}
}
