package game

import "trivia-lobby-backend/internal/protocol"

// QuestionSource supplies the question payload for a round's question
// phase. The content pipeline behind it is opaque to the state machine.
type QuestionSource interface {
	Question(round int) protocol.Question
}

type staticSource struct {
	pool []protocol.Question
}

// NewStaticSource returns a QuestionSource backed by a fixed in-process
// pool, cycling by round index.
func NewStaticSource() QuestionSource {
	return &staticSource{pool: []protocol.Question{
		{Category: "easy", Prompt: "Which planet is closest to the sun?", Choices: []string{"Mercury", "Venus", "Mars", "Jupiter"}},
		{Category: "medium", Prompt: "What year did the first moon landing happen?", Choices: []string{"1965", "1969", "1972", "1958"}},
		{Category: "hard", Prompt: "Who formulated the incompleteness theorems?", Choices: []string{"Hilbert", "Turing", "Gödel", "Church"}},
	}}
}

func (s *staticSource) Question(round int) protocol.Question {
	return s.pool[round%len(s.pool)]
}
