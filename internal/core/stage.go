package core

import (
	"sort"
	"strings"
)

// Stage is one gate of the mission. Content is rendered client-side; the
// server only knows the title and the accepted answers.
type Stage struct {
	Index   int
	Title   string
	Answers []string
}

// DefaultStages is the four-stage climate mission.
func DefaultStages() []Stage {
	return []Stage{
		{Index: 1, Title: "Carbon footprint", Answers: []string{"2940", "2.940", "2,940"}},
		{Index: 2, Title: "Memory pairs", Answers: []string{"8", "huit"}},
		{Index: 3, Title: "Cooperative map", Answers: []string{"amazonie", "amazon", "amazonia"}},
		{Index: 4, Title: "Energy mix", Answers: []string{"60", "60%"}},
	}
}

// StageCatalog is the read-only set of stages shared by every room.
type StageCatalog struct {
	stages map[int]Stage
	last   int
}

// NewStageCatalog indexes stages. Later entries win on duplicate indexes.
func NewStageCatalog(stages []Stage) *StageCatalog {
	c := &StageCatalog{stages: make(map[int]Stage, len(stages))}
	for _, st := range stages {
		answers := make([]string, 0, len(st.Answers))
		for _, a := range st.Answers {
			answers = append(answers, NormalizeAnswer(a))
		}
		c.stages[st.Index] = Stage{Index: st.Index, Title: st.Title, Answers: answers}
		if st.Index > c.last {
			c.last = st.Index
		}
	}
	return c
}

// MergeStages overlays overrides onto base by index.
func MergeStages(base, overrides []Stage) []Stage {
	byIndex := make(map[int]Stage, len(base)+len(overrides))
	for _, st := range base {
		byIndex[st.Index] = st
	}
	for _, st := range overrides {
		if st.Title == "" {
			st.Title = byIndex[st.Index].Title
		}
		byIndex[st.Index] = st
	}
	out := make([]Stage, 0, len(byIndex))
	for _, st := range byIndex {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Last returns the highest stage index.
func (c *StageCatalog) Last() int {
	return c.last
}

// Titles lists stages in order without their answer keys.
func (c *StageCatalog) Titles() []Stage {
	out := make([]Stage, 0, len(c.stages))
	for _, st := range c.stages {
		out = append(out, Stage{Index: st.Index, Title: st.Title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Check reports whether raw matches any accepted answer of stage index.
func (c *StageCatalog) Check(index int, raw string) (bool, error) {
	st, ok := c.stages[index]
	if !ok {
		return false, ErrInvalidStage
	}
	answer := NormalizeAnswer(raw)
	for _, accepted := range st.Answers {
		if answer == accepted {
			return true, nil
		}
	}
	return false, nil
}

// NormalizeAnswer trims and lowercases an answer for comparison.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
