package game

import "time"

// PhaseDef is one timed sub-step within a round.
type PhaseDef struct {
	Name     string
	Duration time.Duration
}

// RoundDef is one outer game-structure step, carrying the point value per
// question category for that round.
type RoundDef struct {
	Name   string
	Points map[string]int
}

// Rules is the static game structure: capacity limits plus the ordered
// round and phase tables. Loaded once at startup, immutable afterwards.
type Rules struct {
	MinPlayers int
	MaxPlayers int
	Rounds     []RoundDef
	Phases     []PhaseDef
}

// PhaseQuestion marks the phase whose start broadcast carries a question
// payload.
const PhaseQuestion = "question"

var DefaultRounds = []RoundDef{
	{Name: "opening", Points: map[string]int{"easy": 100, "medium": 200, "hard": 300}},
	{Name: "double", Points: map[string]int{"easy": 200, "medium": 400, "hard": 600}},
	{Name: "final", Points: map[string]int{"easy": 400, "medium": 800, "hard": 1200}},
}

var DefaultPhases = []PhaseDef{
	{Name: PhaseQuestion, Duration: 20 * time.Second},
	{Name: "reveal", Duration: 8 * time.Second},
}

func DefaultRules(minPlayers, maxPlayers int) Rules {
	return Rules{
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		Rounds:     DefaultRounds,
		Phases:     DefaultPhases,
	}
}
