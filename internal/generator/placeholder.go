package generator

import (
	"fmt"

	"github.com/edupro/proctor-backend/internal/model"
)

var placeholderOptions = []string{"Optimization", "Security", "Latency", "Redundancy"}

// Placeholder builds the deterministic local question set used whenever
// the external generator is unavailable, fails, or does not resolve
// within the bounded wait. Same inputs always produce the same set, so a
// degraded attempt is still reproducible.
func Placeholder(topic string, count int) []model.Question {
	questions := make([]model.Question, count)
	for i := range questions {
		questions[i] = model.Question{
			Text:         fmt.Sprintf("Practice question %d: which concept is central to %s?", i+1, topic),
			Options:      append([]string(nil), placeholderOptions...),
			CorrectIndex: 0,
		}
	}
	return questions
}
