package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireroom-server/internal/core"
	"github.com/vovakirdan/wireroom-server/internal/proto"
	"github.com/vovakirdan/wireroom-server/internal/store"
)

const maxMissionPage = 100

// APIHandlers provides the read-only HTTP endpoints.
type APIHandlers struct {
	hub      *core.Hub
	missions store.MissionStore
	log      *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, missions store.MissionStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub:      hub,
		missions: missions,
		log:      logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Rooms   int    `json:"rooms"`
	Players int    `json:"players"`
}

// Health reports liveness with room and player counts.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	st := h.hub.Stats()
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Rooms: st.Rooms, Players: st.Members})
}

// Status reports every counter the hub and archive keep.
// GET /api/status
func (h *APIHandlers) Status(c *gin.Context) {
	st := h.hub.Stats()
	resp := proto.Status{
		Status:      "ok",
		Rooms:       st.Rooms,
		ActiveRooms: st.ActiveRooms,
		Players:     st.Members,
		Connections: st.Connections,
		VoicePeers:  st.VoicePeers,
		Protocol:    proto.ProtocolVersion,
	}
	if h.missions != nil {
		n, err := h.missions.CountMissions(c.Request.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("failed to count missions")
		} else {
			resp.Missions = n
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Stages lists stage titles; answers never leave the server.
// GET /api/stages
func (h *APIHandlers) Stages(c *gin.Context) {
	stages := h.hub.Stages()
	out := make([]proto.Stage, 0, len(stages))
	for _, st := range stages {
		out = append(out, proto.Stage{Index: st.Index, Title: st.Title})
	}
	c.JSON(http.StatusOK, gin.H{"stages": out})
}

// Missions returns the most recent archived missions.
// GET /api/missions?limit=N
func (h *APIHandlers) Missions(c *gin.Context) {
	if h.missions == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "mission archive disabled"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxMissionPage)
	}

	missions, err := h.missions.ListMissions(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list missions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"missions": missionsToProto(missions)})
}

func missionsToProto(missions []store.Mission) []proto.Mission {
	out := make([]proto.Mission, 0, len(missions))
	for _, m := range missions {
		solved := make([]proto.SolvedStage, 0, len(m.Solved))
		for _, s := range m.Solved {
			solved = append(solved, proto.SolvedStage{StageIndex: s.Stage, SolvedAt: millis(s.SolvedAt)})
		}
		members := m.Members
		if members == nil {
			members = []string{}
		}
		out = append(out, proto.Mission{
			Code:         m.Code,
			FinalTime:    m.FinalTime,
			MaxTime:      m.MaxTime,
			Outcome:      m.Outcome,
			Members:      members,
			SolvedStages: solved,
			CompletedAt:  millis(m.CompletedAt),
		})
	}
	return out
}
