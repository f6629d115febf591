package scoring

import (
	"github.com/edupro/proctor-backend/internal/model"
)

// MaxScore is the fixed maximum for every quiz result.
const MaxScore = 100

// Compute returns 100 × correct/total with no rounding. Zero questions
// scores zero. Answer slots use session.Unanswered (-1), which can never
// match a correct index.
func Compute(answers []int, questions []model.Question) float64 {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectIndex {
			correct++
		}
	}
	return MaxScore * float64(correct) / float64(len(questions))
}
