package store

import (
	"context"
	"time"

	"github.com/vovakirdan/wireroom-server/internal/core"
)

// Mission is an archived result of a finished room.
type Mission struct {
	ID          int64
	Code        string
	FinalTime   int64 // whole seconds
	MaxTime     int64 // whole seconds
	Outcome     string
	Members     []string
	Solved      []SolvedStage
	StartedAt   time.Time
	CompletedAt time.Time
}

// SolvedStage is a stage pass inside an archived mission.
type SolvedStage struct {
	Stage    int       `json:"stage"`
	SolvedAt time.Time `json:"solvedAt"`
}

// MissionFromSummary converts a core summary to its archived form.
func MissionFromSummary(s core.Summary) Mission {
	members := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		members = append(members, m.Name)
	}
	solved := make([]SolvedStage, 0, len(s.Solved))
	for _, st := range s.Solved {
		solved = append(solved, SolvedStage{Stage: st.Stage, SolvedAt: st.SolvedAt})
	}
	return Mission{
		Code:        s.Code,
		FinalTime:   s.FinalTime,
		MaxTime:     s.MaxTime,
		Outcome:     string(s.Outcome),
		Members:     members,
		Solved:      solved,
		StartedAt:   s.StartTime,
		CompletedAt: s.EndTime,
	}
}

// MissionStore defines operations on the mission archive.
type MissionStore interface {
	core.MissionRecorder
	SaveMission(ctx context.Context, m Mission) (int64, error)
	ListMissions(ctx context.Context, limit int) ([]Mission, error)
	CountMissions(ctx context.Context) (int64, error)
}

// Store is the composite interface for persistence.
type Store interface {
	MissionStore
	Close() error
}
