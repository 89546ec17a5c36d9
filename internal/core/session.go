package core

import (
	"time"
)

// Outcome classifies a finished mission.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeTimeout Outcome = "timeout"
)

// AnswerResult is the outcome of one answer submission.
type AnswerResult struct {
	Correct   bool
	Stage     int
	NextStage int
}

// Summary is produced when a room finishes.
type Summary struct {
	Code      string
	FinalTime int64 // whole seconds
	MaxTime   int64 // whole seconds
	Outcome   Outcome
	Members   []Member
	Solved    []SolvedStage
	StartTime time.Time
	EndTime   time.Time
}

// Session drives the waiting -> active -> finished lifecycle. Every method
// expects the caller to hold the room lock.
type Session struct {
	stages  *StageCatalog
	maxTime time.Duration
	now     func() time.Time
}

// NewSession builds a session state machine over a stage catalogue.
func NewSession(stages *StageCatalog, maxTime time.Duration, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{stages: stages, maxTime: maxTime, now: now}
}

// Stages returns the catalogue the session validates against.
func (s *Session) Stages() *StageCatalog {
	return s.stages
}

// start moves a waiting room to active. Returns false for any other phase.
func (s *Session) start(r *Room) bool {
	if r.phase != PhaseWaiting {
		return false
	}
	r.phase = PhaseActive
	r.startTime = s.now()
	return true
}

// submitAnswer checks raw against the key of stage. A stage other than the
// current one is still checked against its own key.
// TODO: confirm with product whether submissions for a non-current stage should be rejected.
func (s *Session) submitAnswer(r *Room, stage int, raw string) (AnswerResult, error) {
	if r.phase != PhaseActive {
		return AnswerResult{}, ErrGameNotActive
	}
	ok, err := s.stages.Check(stage, raw)
	if err != nil {
		return AnswerResult{}, err
	}
	if !ok {
		return AnswerResult{Stage: stage}, nil
	}

	r.solved = append(r.solved, SolvedStage{Stage: stage, SolvedAt: s.now()})
	r.currentStage = stage + 1
	return AnswerResult{Correct: true, Stage: stage, NextStage: r.currentStage}, nil
}

// complete finishes an active room whose current stage is past the last one.
func (s *Session) complete(r *Room) (Summary, bool) {
	if r.phase != PhaseActive || r.currentStage <= s.stages.Last() {
		return Summary{}, false
	}
	r.phase = PhaseFinished
	r.endTime = s.now()
	if r.endTime.Before(r.startTime) {
		r.endTime = r.startTime
	}

	final := int64(r.endTime.Sub(r.startTime) / time.Second)
	maxTime := int64(s.maxTime / time.Second)
	outcome := OutcomeSuccess
	if final >= maxTime {
		outcome = OutcomeTimeout
	}

	return Summary{
		Code:      r.Code,
		FinalTime: final,
		MaxTime:   maxTime,
		Outcome:   outcome,
		Members:   r.membersCopy(),
		Solved:    append([]SolvedStage(nil), r.solved...),
		StartTime: r.startTime,
		EndTime:   r.endTime,
	}, true
}
