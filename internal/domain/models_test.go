package domain

import (
	"encoding/json"
	"testing"
)

func TestQuizQuestionDecodesCategoryShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		kind CategoryRefKind
		id   string
	}{
		{name: "embedded", raw: `{"_id":"q1","quizCategory":{"_id":"c1","quizCategoryName":"Math"}}`, kind: CategoryResolved, id: "c1"},
		{name: "bare id", raw: `{"_id":"q1","quizCategory":"c2"}`, kind: CategoryUnresolved, id: "c2"},
		{name: "null", raw: `{"_id":"q1","quizCategory":null}`, kind: CategoryAbsent},
		{name: "missing", raw: `{"_id":"q1"}`, kind: CategoryAbsent},
		{name: "empty id", raw: `{"_id":"q1","quizCategory":""}`, kind: CategoryAbsent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var q QuizQuestion
			if err := json.Unmarshal([]byte(tc.raw), &q); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if q.Category.Kind != tc.kind || q.Category.ID != tc.id {
				t.Fatalf("expected kind %d id %q, got %+v", tc.kind, tc.id, q.Category)
			}
		})
	}
}

func TestQuizQuestionRejectsUnexpectedCategory(t *testing.T) {
	var q QuizQuestion
	if err := json.Unmarshal([]byte(`{"quizCategory":42}`), &q); err == nil {
		t.Fatalf("expected error for numeric category")
	}
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "two", "a": "one"}}
	if got := err.Error(); got != "validation failed: a: one; b: two" {
		t.Fatalf("unexpected message %q", got)
	}
}
