package scoring

import (
	"testing"

	"github.com/edupro/proctor-backend/internal/model"
)

func questionsWithKeys(keys ...int) []model.Question {
	qs := make([]model.Question, len(keys))
	for i, k := range keys {
		qs[i] = model.Question{Options: []string{"a", "b", "c", "d"}, CorrectIndex: k}
	}
	return qs
}

func TestCompute(t *testing.T) {
	cases := []struct {
		name      string
		answers   []int
		questions []model.Question
		want      float64
	}{
		{"AllCorrect", []int{0, 1, 2}, questionsWithKeys(0, 1, 2), 100},
		{"AllWrong", []int{1, 2, 3}, questionsWithKeys(0, 1, 2), 0},
		{"FourOfFive", []int{0, 1, 2, 3, -1}, questionsWithKeys(0, 1, 2, 3, 0), 80},
		{"AllUnanswered", []int{-1, -1, -1}, questionsWithKeys(0, 1, 2), 0},
		{"NoQuestions", nil, nil, 0},
		{"ShortAnswerSlice", []int{0}, questionsWithKeys(0, 1, 2, 3), 25},
		{"OneOfThree", []int{0, 0, 0}, questionsWithKeys(0, 1, 2), 100.0 / 3},
		{"TwoOfThree", []int{0, 1, 0}, questionsWithKeys(0, 1, 2), 200.0 / 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.answers, tc.questions)
			if got != tc.want {
				t.Errorf("Compute = %v, want %v", got, tc.want)
			}
		})
	}
}
