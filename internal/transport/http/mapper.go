package http

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/vovakirdan/wireroom-server/internal/core"
	"github.com/vovakirdan/wireroom-server/internal/proto"
)

const errCodeInvalidMessage = "invalid_message"

func invalidMessage(msg string) *proto.Error {
	return &proto.Error{Code: errCodeInvalidMessage, Msg: msg}
}

func decode(data json.RawMessage, v any) *proto.Error {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return invalidMessage("malformed data: " + err.Error())
	}
	return nil
}

// inboundToCommand maps a client envelope to a core command. A non-nil
// proto.Error is reported back to the sender and the message is skipped.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeCreateRoom:
		var data proto.CreateRoomData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandCreateRoom, Name: data.DisplayName}, nil
	case proto.InboundTypeJoinRoom:
		var data proto.JoinRoomData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandJoinRoom, Room: data.Code, Name: data.DisplayName}, nil
	case proto.InboundTypeLeaveRoom:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil
	case proto.InboundTypeStartGame:
		var data proto.RoomRef
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandStartGame, Room: data.Code}, nil
	case proto.InboundTypeSubmitAnswer:
		var data proto.SubmitAnswerData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:   core.CommandSubmitAnswer,
			Room:   data.Code,
			Stage:  data.StageIndex,
			Answer: answerText(data.Answer),
		}, nil
	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:    core.CommandSendMessage,
			Room:    data.Code,
			Message: core.Message{From: strings.TrimSpace(data.DisplayName), Text: data.Text},
		}, nil
	case proto.InboundTypeShareClue:
		var data proto.ShareClueData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandShareClue, Room: data.Code, Message: core.Message{Text: data.Text}}, nil
	case proto.InboundTypeVoiceReady:
		return &core.Command{Kind: core.CommandVoiceReady}, nil
	case proto.InboundTypeVoiceAnnounce:
		return voiceTarget(core.CommandVoiceAnnounce, inbound.Data, nil)
	case proto.InboundTypeVoiceOffer:
		return voiceTarget(core.CommandVoiceOffer, inbound.Data, func(d proto.VoiceTargetData) json.RawMessage { return d.Offer })
	case proto.InboundTypeVoiceAnswer:
		return voiceTarget(core.CommandVoiceAnswer, inbound.Data, func(d proto.VoiceTargetData) json.RawMessage { return d.Answer })
	case proto.InboundTypeVoiceCandidate:
		return voiceTarget(core.CommandVoiceCandidate, inbound.Data, func(d proto.VoiceTargetData) json.RawMessage { return d.Candidate })
	case proto.InboundTypeVoiceSpeaking:
		var data proto.VoiceSpeakingData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandVoiceSpeaking, Speaking: data.Speaking, Volume: data.Volume}, nil
	case proto.InboundTypeVoiceMute:
		var data proto.VoiceMuteData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandVoiceMute, Muted: data.Muted}, nil
	default:
		return nil, invalidMessage("unknown message type")
	}
}

func voiceTarget(kind core.CommandKind, raw json.RawMessage, blob func(proto.VoiceTargetData) json.RawMessage) (*core.Command, *proto.Error) {
	var data proto.VoiceTargetData
	if perr := decode(raw, &data); perr != nil {
		return nil, perr
	}
	cmd := &core.Command{Kind: kind, Target: data.Target}
	if blob != nil {
		cmd.Payload = blob(data)
	}
	return cmd, nil
}

// answerText accepts a JSON string or any other literal (typically a number)
// and returns its text form. "2940" and 2940 submit the same answer.
func answerText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomCreated:
		return eventOutbound(proto.EventNameRoomCreated, roomFromState(event.State))
	case core.EventRoomJoined:
		return eventOutbound(proto.EventNameRoomJoined, roomFromState(event.State))
	case core.EventJoinError:
		notice := proto.EventNotice{Code: core.ErrCodeInternal, Message: "join failed"}
		if event.Error != nil {
			notice = proto.EventNotice{Code: event.Error.Code, Message: event.Error.Message}
		}
		return eventOutbound(proto.EventNameJoinError, notice)
	case core.EventPlayerJoined:
		return eventOutbound(proto.EventNamePlayerJoined, proto.EventMembership{
			Members:       membersFromCore(event.Members),
			NewMemberName: event.User,
		})
	case core.EventPlayerLeft:
		return eventOutbound(proto.EventNamePlayerLeft, proto.EventMembership{
			Members:        membersFromCore(event.Members),
			LeftMemberName: event.User,
		})
	case core.EventGameStarted:
		data := proto.EventGameStarted{StartTime: millis(event.StartedAt())}
		if event.State != nil {
			data.CurrentStage = event.State.CurrentStage
		}
		return eventOutbound(proto.EventNameGameStarted, data)
	case core.EventPuzzleSolved:
		data := proto.EventPuzzleSolved{SolvedBy: event.User, Message: event.Text}
		if event.Answer != nil {
			data.StageIndex = event.Answer.Stage
			data.NextStage = event.Answer.NextStage
		}
		return eventOutbound(proto.EventNamePuzzleSolved, data)
	case core.EventWrongAnswer:
		return eventOutbound(proto.EventNameWrongAnswer, proto.EventNotice{Message: event.Text})
	case core.EventGameCompleted:
		var data proto.EventGameCompleted
		if s := event.Summary; s != nil {
			data = proto.EventGameCompleted{
				FinalTime:    s.FinalTime,
				MaxTime:      s.MaxTime,
				Outcome:      string(s.Outcome),
				Members:      membersFromCore(s.Members),
				SolvedStages: solvedFromCore(s.Solved),
			}
		}
		return eventOutbound(proto.EventNameGameCompleted, data)
	case core.EventNewMessage:
		return eventOutbound(proto.EventNameNewMessage, proto.EventMessage{
			DisplayName: event.Message.From,
			Text:        event.Message.Text,
			Timestamp:   millis(event.Message.CreatedAt),
		})
	case core.EventClueShared:
		return eventOutbound(proto.EventNameClueShared, proto.EventClue{From: event.Message.From, Text: event.Message.Text})
	case core.EventError:
		if event.Error == nil {
			return errorOutbound(&proto.Error{Code: "unknown", Msg: "unknown error"})
		}
		return errorOutbound(&proto.Error{Code: event.Error.Code, Msg: event.Error.Message})
	default:
		return voiceOutbound(event)
	}
}

func voiceOutbound(event *core.Event) proto.Outbound {
	v := event.Voice
	if v == nil {
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
	switch event.Kind {
	case core.EventVoiceUserReady:
		return eventOutbound(proto.EventNameVoiceUserReady, proto.EventVoicePeer{ConnectionID: v.From, DisplayName: v.Name})
	case core.EventVoiceRequestAnnounce:
		return eventOutbound(proto.EventNameVoiceRequest, proto.EventVoiceRequestAnnounce{NewConnectionID: v.NewPeer, Code: event.Room})
	case core.EventVoiceOffer:
		return eventOutbound(proto.EventNameVoiceOffer, proto.EventVoiceSignal{From: v.From, Offer: v.Payload})
	case core.EventVoiceAnswer:
		return eventOutbound(proto.EventNameVoiceAnswer, proto.EventVoiceSignal{From: v.From, Answer: v.Payload})
	case core.EventVoiceCandidate:
		return eventOutbound(proto.EventNameVoiceCandidate, proto.EventVoiceSignal{From: v.From, Candidate: v.Payload})
	case core.EventVoiceUserSpeaking:
		return eventOutbound(proto.EventNameVoiceSpeaking, proto.EventVoiceSpeaking{ConnectionID: v.From, Speaking: v.Speaking, Volume: v.Volume})
	case core.EventVoiceUserMuted:
		return eventOutbound(proto.EventNameVoiceMuted, proto.EventVoiceMuted{ConnectionID: v.From, Muted: v.Muted})
	case core.EventVoiceUserLeft:
		return eventOutbound(proto.EventNameVoiceUserLeft, proto.EventVoicePeer{ConnectionID: v.From})
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventOutbound(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func errorOutbound(perr *proto.Error) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeError, Error: perr}
}

func roomFromState(st *core.RoomState) proto.Room {
	if st == nil {
		return proto.Room{Members: []proto.Member{}, SolvedStages: []proto.SolvedStage{}}
	}
	return proto.Room{
		Code:         st.Code,
		Members:      membersFromCore(st.Members),
		Phase:        string(st.Phase),
		CurrentStage: st.CurrentStage,
		StartTime:    millis(st.StartTime),
		EndTime:      millis(st.EndTime),
		SolvedStages: solvedFromCore(st.Solved),
	}
}

func membersFromCore(members []core.Member) []proto.Member {
	out := make([]proto.Member, 0, len(members))
	for _, m := range members {
		out = append(out, proto.Member{ID: m.ID, DisplayName: m.Name, IsHost: m.IsHost})
	}
	return out
}

func solvedFromCore(solved []core.SolvedStage) []proto.SolvedStage {
	out := make([]proto.SolvedStage, 0, len(solved))
	for _, s := range solved {
		out = append(out, proto.SolvedStage{StageIndex: s.Stage, SolvedAt: millis(s.SolvedAt)})
	}
	return out
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
