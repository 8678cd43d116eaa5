package cli

import (
	"bytes"
	"strings"
	"testing"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/domain"
)

func TestPrintViewListsGroupsAndCounts(t *testing.T) {
	page := domain.QuizPage{
		Items: []domain.QuizQuestion{
			{ID: "1", Category: domain.ResolvedCategory("c2", "Science"), Question: "H2O?", Options: []string{"Water", "Fire"}, Answer: "Water", Points: 5},
			{ID: "2", Category: domain.ResolvedCategory("c1", "Math"), Question: "2+2?", Options: []string{"3", "4"}, Answer: "4", Points: 10},
		},
		Pagination: domain.Pagination{Page: 1, Limit: 10, Total: 2, TotalPages: 1},
	}
	var buf bytes.Buffer
	if err := printView(&buf, app.Present(page, app.ListQuery{})); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"== Math (1)", "== Science (1)", "Water | Fire", "Showing 1 to 2 of 2 results"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "== Math") > strings.Index(out, "== Science") {
		t.Fatalf("expected groups sorted by name:\n%s", out)
	}
}
