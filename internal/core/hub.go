package core

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const missionRecordTimeout = 5 * time.Second

// HubConfig tunes room limits and injects clocks for tests.
type HubConfig struct {
	MaxMembers     int
	MaxMissionTime time.Duration
	Stages         []Stage
	NewCode        func() string
	Now            func() time.Time
	StatsInterval  time.Duration
}

// Stats are read-only counters for the status surface.
type Stats struct {
	Rooms       int
	ActiveRooms int
	Members     int
	Connections int
	VoicePeers  int
}

// Hub routes client commands to the room store, session state machine and
// signaling relay. Handlers run on the caller's goroutine; rooms are locked
// individually so different rooms never contend.
type Hub struct {
	registry *Registry
	store    *RoomStore
	session  *Session
	relay    *Relay
	fanout   *Fanout
	missions MissionRecorder
	now      func() time.Time
	interval time.Duration
	log      *zerolog.Logger
}

// NewHub creates a hub. missions may be nil.
func NewHub(cfg HubConfig, missions MissionRecorder, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.MaxMembers <= 0 {
		cfg.MaxMembers = 4
	}
	if cfg.MaxMissionTime <= 0 {
		cfg.MaxMissionTime = 30 * time.Minute
	}
	if len(cfg.Stages) == 0 {
		cfg.Stages = DefaultStages()
	}
	if cfg.NewCode == nil {
		cfg.NewCode = defaultCode
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = time.Minute
	}

	registry := NewRegistry()
	store := NewRoomStore(cfg.MaxMembers, cfg.NewCode)
	fanout := NewFanout(registry, logger)

	return &Hub{
		registry: registry,
		store:    store,
		session:  NewSession(NewStageCatalog(cfg.Stages), cfg.MaxMissionTime, cfg.Now),
		relay:    NewRelay(store, fanout, logger),
		fanout:   fanout,
		missions: missions,
		now:      cfg.Now,
		interval: cfg.StatsInterval,
		log:      logger,
	}
}

// Run logs status counters until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := h.Stats()
			h.log.Info().
				Int("rooms", st.Rooms).
				Int("active_rooms", st.ActiveRooms).
				Int("members", st.Members).
				Int("connections", st.Connections).
				Int("voice_peers", st.VoicePeers).
				Msg("hub status")
		}
	}
}

// RegisterClient makes a connection addressable.
func (h *Hub) RegisterClient(c *Client) {
	if !h.registry.Register(c) {
		h.log.Warn().Str("client_id", c.ID).Msg("duplicate client id")
		return
	}
	h.log.Debug().Str("client_id", c.ID).Msg("client registered")
}

// UnregisterClient handles a disconnect. Safe to call more than once.
func (h *Hub) UnregisterClient(c *Client) {
	h.leaveCurrent(c)
	if h.registry.Unregister(c.ID) {
		h.log.Debug().Str("client_id", c.ID).Msg("client unregistered")
	}
}

// Dispatch executes one command. A panic is contained to this command.
func (h *Hub) Dispatch(ctx context.Context, c *Client, cmd *Command) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error().Interface("panic", rec).Str("client_id", c.ID).Msg("command handler panicked")
			h.reject(c, coreError(ErrCodeInternal, "internal error"))
		}
	}()

	switch cmd.Kind {
	case CommandCreateRoom:
		h.createRoom(c, cmd)
	case CommandJoinRoom:
		h.joinRoom(c, cmd)
	case CommandLeaveRoom:
		h.leaveCurrent(c)
	case CommandStartGame:
		h.startGame(c, cmd)
	case CommandSubmitAnswer:
		h.submitAnswer(ctx, c, cmd)
	case CommandSendMessage:
		h.sendMessage(c, cmd)
	case CommandShareClue:
		h.shareClue(c, cmd)
	default:
		h.dispatchVoice(c, cmd)
	}
}

func (h *Hub) dispatchVoice(c *Client, cmd *Command) {
	var err error
	switch cmd.Kind {
	case CommandVoiceReady:
		err = h.relay.Ready(c)
	case CommandVoiceAnnounce:
		err = h.relay.Announce(c, cmd.Target)
	case CommandVoiceOffer:
		err = h.relay.Forward(c, EventVoiceOffer, cmd.Target, cmd.Payload)
	case CommandVoiceAnswer:
		err = h.relay.Forward(c, EventVoiceAnswer, cmd.Target, cmd.Payload)
	case CommandVoiceCandidate:
		err = h.relay.Forward(c, EventVoiceCandidate, cmd.Target, cmd.Payload)
	case CommandVoiceSpeaking:
		err = h.relay.Speaking(c, cmd.Speaking, cmd.Volume)
	case CommandVoiceMute:
		err = h.relay.Mute(c, cmd.Muted)
	default:
		h.reject(c, coreError(ErrCodeBadRequest, "unknown command"))
		return
	}
	if err != nil {
		// Signaling is fire-and-forget; the sender is never told.
		h.log.Debug().Err(err).Str("client_id", c.ID).Str("target", cmd.Target).Msg("voice signal dropped")
	}
}

func (h *Hub) createRoom(c *Client, cmd *Command) {
	h.leaveCurrent(c)
	c.SetName(cmd.Name)

	room := h.store.CreateRoom(c.ID, c.Name())
	room.mu.Lock()
	defer room.mu.Unlock()

	c.setRoom(room.Code)
	state := room.state()
	h.fanout.Send(c.ID, &Event{Kind: EventRoomCreated, Room: room.Code, State: &state})
	h.log.Info().Str("room", room.Code).Str("client_id", c.ID).Str("host", c.Name()).Msg("room created")
}

func (h *Hub) joinRoom(c *Client, cmd *Command) {
	code := strings.ToUpper(strings.TrimSpace(cmd.Room))
	if code == "" {
		h.joinError(c, coreError(ErrCodeBadRequest, "room code is required"))
		return
	}
	if current := c.RoomCode(); current != "" && current != code {
		h.leaveCurrent(c)
	}
	c.SetName(cmd.Name)

	room, ok := h.store.Get(code)
	if !ok {
		h.joinError(c, toCoreError(ErrRoomNotFound))
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	added, err := h.store.joinLocked(room, c.ID, c.Name())
	if err != nil {
		h.joinError(c, toCoreError(err))
		return
	}

	c.setRoom(room.Code)
	state := room.state()
	h.fanout.Send(c.ID, &Event{Kind: EventRoomJoined, Room: room.Code, State: &state})
	if !added {
		return
	}
	h.fanout.Broadcast(state.Members, &Event{
		Kind:    EventPlayerJoined,
		Room:    room.Code,
		User:    c.Name(),
		Members: state.Members,
	}, "")
	h.log.Info().Str("room", room.Code).Str("client_id", c.ID).Int("members", len(state.Members)).Msg("member joined")
}

// leaveCurrent removes c from its room, if any, and notifies the rest.
func (h *Hub) leaveCurrent(c *Client) {
	code := c.RoomCode()
	if code == "" {
		return
	}
	defer c.clearRoom(code)

	room, ok := h.store.Get(code)
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	res, ok := h.store.leaveLocked(room, c.ID)
	if !ok {
		return
	}
	if res.Closed {
		h.log.Info().Str("room", res.Code).Msg("room closed")
		return
	}

	h.fanout.Broadcast(res.Remaining, &Event{
		Kind:    EventPlayerLeft,
		Room:    res.Code,
		User:    res.Name,
		Members: res.Remaining,
	}, "")
	h.relay.left(res.Code, res.Remaining, c.ID)
	h.log.Info().Str("room", res.Code).Str("client_id", c.ID).Int("members", len(res.Remaining)).Msg("member left")
}

// memberRoom resolves code (or the client's own room) and checks membership.
// On success the room is returned locked.
func (h *Hub) memberRoom(c *Client, code string) (*Room, error) {
	if code == "" {
		code = c.RoomCode()
	}
	room, ok := h.store.Get(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if !room.hasMember(c.ID) {
		room.mu.Unlock()
		return nil, ErrNotInRoom
	}
	return room, nil
}

func (h *Hub) startGame(c *Client, cmd *Command) {
	room, err := h.memberRoom(c, cmd.Room)
	if err != nil {
		h.reject(c, err)
		return
	}
	defer room.mu.Unlock()

	if !h.session.start(room) {
		h.log.Debug().Str("room", room.Code).Str("phase", string(room.phase)).Msg("duplicate start ignored")
		return
	}
	state := room.state()
	h.fanout.Broadcast(state.Members, &Event{Kind: EventGameStarted, Room: room.Code, State: &state}, "")
	h.log.Info().Str("room", room.Code).Str("client_id", c.ID).Msg("game started")
}

func (h *Hub) submitAnswer(ctx context.Context, c *Client, cmd *Command) {
	summary, finished := h.applyAnswer(c, cmd)
	if !finished {
		return
	}
	h.log.Info().
		Str("room", summary.Code).
		Int64("final_time", summary.FinalTime).
		Str("outcome", string(summary.Outcome)).
		Msg("game completed")

	if h.missions == nil {
		return
	}
	// The summary must outlive the submitter's connection.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), missionRecordTimeout)
	defer cancel()
	if err := h.missions.RecordMission(recordCtx, summary); err != nil {
		h.log.Warn().Err(err).Str("room", summary.Code).Msg("failed to record mission")
	}
}

// applyAnswer runs the answer under the room lock and reports a completion.
func (h *Hub) applyAnswer(c *Client, cmd *Command) (Summary, bool) {
	room, err := h.memberRoom(c, cmd.Room)
	if err != nil {
		h.reject(c, err)
		return Summary{}, false
	}
	defer room.mu.Unlock()

	if cmd.Stage != room.currentStage {
		h.log.Debug().Str("room", room.Code).Int("stage", cmd.Stage).Int("current", room.currentStage).Msg("answer for non-current stage")
	}

	res, err := h.session.submitAnswer(room, cmd.Stage, cmd.Answer)
	if err != nil {
		h.reject(c, err)
		return Summary{}, false
	}
	if !res.Correct {
		h.fanout.Send(c.ID, &Event{
			Kind:   EventWrongAnswer,
			Room:   room.Code,
			Answer: &res,
			Text:   "Wrong answer. Try again!",
		})
		return Summary{}, false
	}

	h.fanout.Broadcast(room.members, &Event{
		Kind:   EventPuzzleSolved,
		Room:   room.Code,
		User:   c.Name(),
		Answer: &res,
		Text:   "Stage solved! Moving on to the next room.",
	}, "")

	summary, finished := h.session.complete(room)
	if finished {
		h.fanout.Broadcast(room.members, &Event{Kind: EventGameCompleted, Room: room.Code, Summary: &summary}, "")
	}
	return summary, finished
}

func (h *Hub) sendMessage(c *Client, cmd *Command) {
	if strings.TrimSpace(cmd.Message.Text) == "" {
		h.reject(c, coreError(ErrCodeBadRequest, "text is required"))
		return
	}
	room, err := h.memberRoom(c, cmd.Room)
	if err != nil {
		h.reject(c, err)
		return
	}
	defer room.mu.Unlock()

	msg := cmd.Message
	msg.Room = room.Code
	msg.FromID = c.ID
	if msg.From == "" {
		msg.From = c.Name()
	}
	msg.CreatedAt = h.now()
	h.fanout.Broadcast(room.members, &Event{Kind: EventNewMessage, Room: room.Code, User: msg.From, Message: msg}, "")
}

func (h *Hub) shareClue(c *Client, cmd *Command) {
	room, err := h.memberRoom(c, cmd.Room)
	if err != nil {
		h.reject(c, err)
		return
	}
	defer room.mu.Unlock()

	msg := Message{
		Room:      room.Code,
		FromID:    c.ID,
		From:      c.Name(),
		Text:      cmd.Message.Text,
		CreatedAt: h.now(),
	}
	h.fanout.Broadcast(room.members, &Event{Kind: EventClueShared, Room: room.Code, User: msg.From, Message: msg}, c.ID)
}

func (h *Hub) reject(c *Client, err error) {
	ce := toCoreError(err)
	h.log.Debug().Str("client_id", c.ID).Str("code", ce.Code).Msg("request rejected")
	c.deliver(&Event{Kind: EventError, Error: ce})
}

func (h *Hub) joinError(c *Client, ce *CoreError) {
	h.log.Debug().Str("client_id", c.ID).Str("code", ce.Code).Msg("join rejected")
	c.deliver(&Event{Kind: EventJoinError, Error: ce})
}

// Stats collects counters without holding more than one room lock at a time.
func (h *Hub) Stats() Stats {
	st := Stats{Connections: h.registry.Count()}
	for _, room := range h.store.Rooms() {
		room.mu.Lock()
		if !room.closed {
			st.Rooms++
			st.Members += len(room.members)
			st.VoicePeers += len(room.voice)
			if room.phase == PhaseActive {
				st.ActiveRooms++
			}
		}
		room.mu.Unlock()
	}
	return st
}

// Room returns a snapshot of the room registered under code.
func (h *Hub) Room(code string) (RoomState, bool) {
	room, ok := h.store.Get(code)
	if !ok {
		return RoomState{}, false
	}
	return room.State(), true
}

// VoicePeers returns the voice roster of room code.
func (h *Hub) VoicePeers(code string) []VoicePeer {
	room, ok := h.store.Get(code)
	if !ok {
		return nil
	}
	return room.VoicePeers()
}

// Stages lists the configured stages without their answers.
func (h *Hub) Stages() []Stage {
	return h.session.Stages().Titles()
}

// MaxMissionTime returns the mission budget.
func (h *Hub) MaxMissionTime() time.Duration {
	return h.session.maxTime
}
