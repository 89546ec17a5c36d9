package core

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Relay forwards voice signaling between members of the same room. It never
// inspects payloads; targets are resolved by connection id at forward time.
type Relay struct {
	store  *RoomStore
	fanout *Fanout
	log    *zerolog.Logger
}

// NewRelay builds a relay over the room store.
func NewRelay(store *RoomStore, fanout *Fanout, logger *zerolog.Logger) *Relay {
	return &Relay{store: store, fanout: fanout, log: logger}
}

// withRoom runs fn with the sender's room locked.
func (rl *Relay) withRoom(sender *Client, fn func(r *Room) error) error {
	room, ok := rl.store.Get(sender.RoomCode())
	if !ok {
		return ErrNotInRoom
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed || !room.hasMember(sender.ID) {
		return ErrNotInRoom
	}
	return fn(room)
}

// Ready announces sender to every other member and asks each of them to
// announce itself back, so the newcomer learns who is already in voice.
func (rl *Relay) Ready(sender *Client) error {
	return rl.withRoom(sender, func(r *Room) error {
		peer := r.voicePeer(sender.ID)
		peer.Phase = VoicePhaseReady

		ready := &Event{
			Kind:  EventVoiceUserReady,
			Room:  r.Code,
			User:  peer.Name,
			Voice: &VoiceEvent{From: sender.ID, Name: peer.Name},
		}
		rl.fanout.Broadcast(r.members, ready, sender.ID)

		request := &Event{
			Kind:  EventVoiceRequestAnnounce,
			Room:  r.Code,
			Voice: &VoiceEvent{NewPeer: sender.ID},
		}
		rl.fanout.Broadcast(r.members, request, sender.ID)
		return nil
	})
}

// Announce tells one target that sender is in voice.
func (rl *Relay) Announce(sender *Client, target string) error {
	return rl.withRoom(sender, func(r *Room) error {
		peer := r.voicePeer(sender.ID)
		return rl.sendTo(r, target, &Event{
			Kind:  EventVoiceUserReady,
			Room:  r.Code,
			User:  peer.Name,
			Voice: &VoiceEvent{From: sender.ID, Name: peer.Name},
		})
	})
}

// Forward relays an offer, answer or candidate blob to target verbatim.
func (rl *Relay) Forward(sender *Client, kind EventKind, target string, payload json.RawMessage) error {
	return rl.withRoom(sender, func(r *Room) error {
		err := rl.sendTo(r, target, &Event{
			Kind:  kind,
			Room:  r.Code,
			Voice: &VoiceEvent{From: sender.ID, Payload: payload},
		})
		if err != nil {
			return err
		}

		switch kind {
		case EventVoiceOffer:
			r.voicePeer(sender.ID).advance(VoicePhaseNegotiating)
			r.advanceVoice(target, VoicePhaseNegotiating)
		case EventVoiceAnswer:
			r.voicePeer(sender.ID).advance(VoicePhaseConnected)
			r.advanceVoice(target, VoicePhaseConnected)
		}
		return nil
	})
}

// Speaking shares speaking state with every other member.
func (rl *Relay) Speaking(sender *Client, speaking bool, volume float64) error {
	return rl.withRoom(sender, func(r *Room) error {
		peer := r.voicePeer(sender.ID)
		peer.Speaking = speaking
		peer.Volume = volume
		rl.fanout.Broadcast(r.members, &Event{
			Kind:  EventVoiceUserSpeaking,
			Room:  r.Code,
			Voice: &VoiceEvent{From: sender.ID, Speaking: speaking, Volume: volume},
		}, sender.ID)
		return nil
	})
}

// Mute shares mute state with every other member.
func (rl *Relay) Mute(sender *Client, muted bool) error {
	return rl.withRoom(sender, func(r *Room) error {
		r.voicePeer(sender.ID).Muted = muted
		rl.fanout.Broadcast(r.members, &Event{
			Kind:  EventVoiceUserMuted,
			Room:  r.Code,
			Voice: &VoiceEvent{From: sender.ID, Muted: muted},
		}, sender.ID)
		return nil
	})
}

// left tells the remaining members that id dropped out of voice. The caller
// holds the room lock.
func (rl *Relay) left(code string, remaining []Member, id string) {
	rl.fanout.Broadcast(remaining, &Event{
		Kind:  EventVoiceUserLeft,
		Room:  code,
		Voice: &VoiceEvent{From: id},
	}, "")
}

// sendTo delivers to a member of r. The caller holds the room lock.
func (rl *Relay) sendTo(r *Room, target string, ev *Event) error {
	if target == "" || !r.hasMember(target) {
		return ErrUnknownTarget
	}
	if !rl.fanout.Send(target, ev) {
		return ErrUnknownTarget
	}
	return nil
}
