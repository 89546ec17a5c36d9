package core

// VoicePhase tracks how far a peer got in audio negotiation.
type VoicePhase string

const (
	VoicePhaseReady       VoicePhase = "ready"
	VoicePhaseNegotiating VoicePhase = "negotiating"
	VoicePhaseConnected   VoicePhase = "connected"
)

// VoicePeer is relay bookkeeping for one connection in a room's voice channel.
// It is rebuilt from signaling traffic and never consulted for routing.
type VoicePeer struct {
	ID       string
	Name     string
	Speaking bool
	Volume   float64
	Muted    bool
	Phase    VoicePhase
}

// voicePeer returns the entry for id, creating it for members on first use.
func (r *Room) voicePeer(id string) *VoicePeer {
	if p, ok := r.voice[id]; ok {
		return p
	}
	idx := r.memberIndex(id)
	if idx < 0 {
		return nil
	}
	p := &VoicePeer{ID: id, Name: r.members[idx].Name, Phase: VoicePhaseReady}
	r.voice[id] = p
	return p
}

// advanceVoice moves id forward only if it already joined voice.
func (r *Room) advanceVoice(id string, to VoicePhase) {
	if p, ok := r.voice[id]; ok {
		p.advance(to)
	}
}

// advance moves a peer forward; phases never go backwards.
func (p *VoicePeer) advance(to VoicePhase) {
	if voicePhaseRank(to) > voicePhaseRank(p.Phase) {
		p.Phase = to
	}
}

func voicePhaseRank(p VoicePhase) int {
	switch p {
	case VoicePhaseNegotiating:
		return 1
	case VoicePhaseConnected:
		return 2
	default:
		return 0
	}
}

// VoicePeers returns a copy of the room's voice roster.
func (r *Room) VoicePeers() []VoicePeer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]VoicePeer, 0, len(r.voice))
	for _, m := range r.members {
		if p, ok := r.voice[m.ID]; ok {
			out = append(out, *p)
		}
	}
	return out
}
