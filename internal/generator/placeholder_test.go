package generator

import (
	"reflect"
	"testing"
)

func TestPlaceholderDeterministic(t *testing.T) {
	a := Placeholder("Algebra", 5)
	b := Placeholder("Algebra", 5)

	if len(a) != 5 {
		t.Fatalf("question count = %d, want 5", len(a))
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same inputs produced different question sets")
	}
}

func TestPlaceholderQuestionShape(t *testing.T) {
	qs := Placeholder("Geometry", 3)
	for i, q := range qs {
		if q.Text == "" {
			t.Errorf("question %d has empty text", i)
		}
		if len(q.Options) != 4 {
			t.Errorf("question %d has %d options, want 4", i, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			t.Errorf("question %d correct index %d out of range", i, q.CorrectIndex)
		}
	}
}

func TestPlaceholderOptionsNotAliased(t *testing.T) {
	qs := Placeholder("History", 2)
	qs[0].Options[0] = "mutated"
	if qs[1].Options[0] == "mutated" {
		t.Error("option slices aliased between questions")
	}
}

func TestPlaceholderZeroCount(t *testing.T) {
	if qs := Placeholder("Physics", 0); len(qs) != 0 {
		t.Errorf("question count = %d, want 0", len(qs))
	}
}
