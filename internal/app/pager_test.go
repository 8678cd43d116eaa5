package app_test

import (
	"reflect"
	"testing"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/domain"
)

func TestPagerDerivesRangeFromLimit(t *testing.T) {
	p := app.NewPager(domain.Pagination{Page: 3, Limit: 10, Total: 25, TotalPages: 3}, 1, 0)
	if p.Summary != "Showing 21 to 25 of 25 results" {
		t.Fatalf("unexpected summary %q", p.Summary)
	}
	if !p.HasPrev || p.HasNext {
		t.Fatalf("unexpected prev/next %+v", p)
	}
	if !reflect.DeepEqual(p.Pages, []int{1, 2, 3}) {
		t.Fatalf("unexpected pages %v", p.Pages)
	}
}

func TestPagerWindowSlides(t *testing.T) {
	cases := []struct {
		page int
		want []int
	}{
		{1, []int{1, 2, 3, 4, 5}},
		{5, []int{3, 4, 5, 6, 7}},
		{9, []int{5, 6, 7, 8, 9}},
	}
	for _, tc := range cases {
		p := app.NewPager(domain.Pagination{Page: tc.page, Limit: 10, Total: 90, TotalPages: 9}, tc.page, 5)
		if !reflect.DeepEqual(p.Pages, tc.want) {
			t.Fatalf("page %d: expected %v, got %v", tc.page, tc.want, p.Pages)
		}
	}
}

func TestPagerEmptyAndFallbackPage(t *testing.T) {
	p := app.NewPager(domain.Pagination{}, 0, 3)
	if p.Page != 1 || p.HasPrev || p.HasNext || len(p.Pages) != 0 {
		t.Fatalf("unexpected empty pager %+v", p)
	}
	if p.Summary != "Showing 0 to 0 of 0 results" {
		t.Fatalf("unexpected summary %q", p.Summary)
	}

	p = app.NewPager(domain.Pagination{Total: 4, TotalPages: 2, ShowingFrom: 3, ShowingTo: 4}, 2, 0)
	if p.Page != 2 || p.Summary != "Showing 3 to 4 of 4 results" {
		t.Fatalf("expected requested page used, got %+v", p)
	}
}
