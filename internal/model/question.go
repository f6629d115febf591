package model

// Question is a single multiple-choice item served to an attempt.
// Generated per attempt; never persisted with its answer key exposed.
type Question struct {
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// Redacted returns a copy safe to send to the student (no answer key).
func (q Question) Redacted() RedactedQuestion {
	return RedactedQuestion{Text: q.Text, Options: q.Options}
}

// RedactedQuestion is a question as presented to the student.
type RedactedQuestion struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

// RedactQuestions redacts a full question set.
func RedactQuestions(qs []Question) []RedactedQuestion {
	out := make([]RedactedQuestion, len(qs))
	for i, q := range qs {
		out[i] = q.Redacted()
	}
	return out
}
