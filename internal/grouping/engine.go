// Package grouping derives the grouped question view shown by the console:
// text filtering, category buckets, sidebar counts and the visible total.
package grouping

import (
	"sort"
	"strings"

	"quiz-admin-console/internal/domain"
)

// View is the derived result of one grouping pass.
type View struct {
	// Groups holds the buckets visible under the current category selection.
	Groups []domain.CategoryGroup `json:"groups"`
	// Stats covers every bucket of the filtered set, regardless of selection.
	Stats        []domain.CategoryStat `json:"stats"`
	TotalVisible int                   `json:"totalVisible"`
	TotalMatched int                   `json:"totalMatched"`
}

// Group filters questions by search, buckets them by category and applies the
// category selection. It never fails; empty input yields an empty view.
func Group(questions []domain.QuizQuestion, search, category string) View {
	filtered := Filter(questions, search)
	buckets := bucket(filtered)

	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := strings.ToLower(buckets[i].CategoryName), strings.ToLower(buckets[j].CategoryName)
		if a != b {
			return a < b
		}
		return buckets[i].CategoryID < buckets[j].CategoryID
	})
	for i := range buckets {
		items := buckets[i].Items
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].Points > items[b].Points
		})
	}

	view := View{
		Groups:       []domain.CategoryGroup{},
		Stats:        stats(buckets),
		TotalMatched: len(filtered),
	}
	for _, g := range buckets {
		if category == "" || category == domain.AllCategories || category == g.CategoryID {
			view.Groups = append(view.Groups, g)
			view.TotalVisible += len(g.Items)
		}
	}
	return view
}

// Filter keeps the questions whose question text, answer or options contain
// search case-insensitively. An empty search keeps everything.
func Filter(questions []domain.QuizQuestion, search string) []domain.QuizQuestion {
	out := make([]domain.QuizQuestion, 0, len(questions))
	if search == "" {
		return append(out, questions...)
	}
	needle := strings.ToLower(search)
	for _, q := range questions {
		if strings.Contains(haystack(q), needle) {
			out = append(out, q)
		}
	}
	return out
}

func haystack(q domain.QuizQuestion) string {
	parts := make([]string, 0, len(q.Options)+2)
	parts = append(parts, q.Question, q.Answer)
	parts = append(parts, q.Options...)
	return strings.ToLower(strings.Join(parts, " "))
}

// Resolve normalizes a category reference to the (id, name) pair used for
// bucketing. Only fully resolved references keep their own identity.
func Resolve(ref domain.CategoryRef) (string, string) {
	if ref.Kind != domain.CategoryResolved || ref.ID == "" {
		return domain.UncategorizedID, domain.UncategorizedName
	}
	name := ref.Name
	if name == "" {
		name = domain.UncategorizedName
	}
	return ref.ID, name
}

// ResolveCategories upgrades bare category ids using a known category list.
// References that stay unknown are left untouched.
func ResolveCategories(questions []domain.QuizQuestion, categories []domain.Category) []domain.QuizQuestion {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	out := make([]domain.QuizQuestion, len(questions))
	for i, q := range questions {
		if q.Category.Kind == domain.CategoryUnresolved {
			if name, ok := names[q.Category.ID]; ok {
				q.Category = domain.ResolvedCategory(q.Category.ID, name)
			}
		}
		out[i] = q
	}
	return out
}

func bucket(questions []domain.QuizQuestion) []domain.CategoryGroup {
	index := make(map[string]int)
	groups := make([]domain.CategoryGroup, 0)
	for _, q := range questions {
		id, name := Resolve(q.Category)
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, domain.CategoryGroup{CategoryID: id, CategoryName: name})
		}
		groups[i].Items = append(groups[i].Items, q)
	}
	return groups
}

func stats(groups []domain.CategoryGroup) []domain.CategoryStat {
	out := make([]domain.CategoryStat, 0, len(groups))
	for _, g := range groups {
		out = append(out, domain.CategoryStat{
			CategoryID:   g.CategoryID,
			CategoryName: g.CategoryName,
			Count:        len(g.Items),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].CategoryName) < strings.ToLower(out[j].CategoryName)
	})
	return out
}
