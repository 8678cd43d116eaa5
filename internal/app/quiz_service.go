package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"quiz-admin-console/internal/domain"
	"quiz-admin-console/internal/grouping"
	"quiz-admin-console/internal/validation"
)

// quizPageWindow is the number of page buttons shown under the question list.
const quizPageWindow = 5

// ListQuery is the state of the question screen: page, free-text search and
// the selected category ("all" or a category id).
type ListQuery struct {
	Page     int    `json:"page" form:"page"`
	Search   string `json:"search" form:"search"`
	Category string `json:"category" form:"category"`
}

func (q ListQuery) normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Category == "" {
		q.Category = domain.AllCategories
	}
	return q
}

// QuizPageView is the grouped question screen.
type QuizPageView struct {
	grouping.View
	Query ListQuery `json:"query"`
	Pager Pager     `json:"pager"`
}

// QuizService contains the question use cases of the console.
type QuizService struct {
	api       QuizAPI
	cache     PageCache
	audit     AuditLog
	validator *validation.Validator
	now       func() time.Time
}

func NewQuizService(api QuizAPI, cache PageCache, audit AuditLog, validator *validation.Validator) *QuizService {
	return &QuizService{api: api, cache: cache, audit: audit, validator: validator, now: time.Now}
}

// View fetches the requested page and derives the grouped view from it.
func (s *QuizService) View(ctx context.Context, sess domain.Session, q ListQuery) (QuizPageView, error) {
	q = q.normalize()
	page, err := s.Page(ctx, sess, q.Page, q.Search)
	if err != nil {
		return QuizPageView{}, err
	}
	return Present(page, q), nil
}

// Page returns one page of questions with category references resolved
// against the category list. The backend sees the search trimmed; local
// filtering in Present uses it as typed.
func (s *QuizService) Page(ctx context.Context, sess domain.Session, page int, search string) (domain.QuizPage, error) {
	search = strings.TrimSpace(search)
	key := fmt.Sprintf("%d|%s", page, strings.ToLower(search))
	raw, err := s.cache.Fetch(ctx, collectionQuizzes, key, func(ctx context.Context) ([]byte, error) {
		result, err := s.api.ListQuizzes(ctx, sess.AccessToken, page, search)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
	if err != nil {
		return domain.QuizPage{}, err
	}

	var result domain.QuizPage
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.QuizPage{}, fmt.Errorf("decode cached quiz page: %w", err)
	}
	if needsResolution(result.Items) {
		categories, err := s.categories(ctx, sess)
		if err != nil {
			log.Printf("category lookup failed: %v", err)
		} else {
			result.Items = grouping.ResolveCategories(result.Items, categories)
		}
	}
	return result, nil
}

// Present runs the grouping engine over an already fetched page.
func Present(page domain.QuizPage, q ListQuery) QuizPageView {
	q = q.normalize()
	return QuizPageView{
		View:  grouping.Group(page.Items, q.Search, q.Category),
		Query: q,
		Pager: NewPager(page.Pagination, q.Page, quizPageWindow),
	}
}

// Create adds a single question.
func (s *QuizService) Create(ctx context.Context, sess domain.Session, in domain.QuizInput, q ListQuery) (Mutation[domain.QuizQuestion, QuizPageView], error) {
	if err := s.validator.Quiz(in); err != nil {
		return Mutation[domain.QuizQuestion, QuizPageView]{}, err
	}
	created, err := s.api.CreateQuiz(ctx, sess.AccessToken, in)
	if err != nil {
		return Mutation[domain.QuizQuestion, QuizPageView]{}, err
	}
	result := Mutation[domain.QuizQuestion, QuizPageView]{Items: created}
	s.settle(ctx, sess, &result, "create", firstID(created), q)
	return result, nil
}

// CreateBulk adds several questions to one category in a single request.
func (s *QuizService) CreateBulk(ctx context.Context, sess domain.Session, in domain.BulkQuizInput, q ListQuery) (Mutation[domain.QuizQuestion, QuizPageView], error) {
	if err := s.validator.BulkQuiz(in); err != nil {
		return Mutation[domain.QuizQuestion, QuizPageView]{}, err
	}
	created, err := s.api.CreateQuizzes(ctx, sess.AccessToken, in)
	if err != nil {
		return Mutation[domain.QuizQuestion, QuizPageView]{}, err
	}
	result := Mutation[domain.QuizQuestion, QuizPageView]{Items: created}
	s.settle(ctx, sess, &result, "create", firstID(created), q)
	return result, nil
}

// Update replaces a question.
func (s *QuizService) Update(ctx context.Context, sess domain.Session, id string, in domain.QuizInput, q ListQuery) (Mutation[domain.QuizQuestion, QuizPageView], error) {
	if strings.TrimSpace(id) == "" {
		return Mutation[domain.QuizQuestion, QuizPageView]{}, domain.ErrNotFound
	}
	if err := s.validator.Quiz(in); err != nil {
		return Mutation[domain.QuizQuestion, QuizPageView]{}, err
	}
	updated, err := s.api.UpdateQuiz(ctx, sess.AccessToken, id, in)
	if err != nil {
		return Mutation[domain.QuizQuestion, QuizPageView]{}, err
	}
	result := Mutation[domain.QuizQuestion, QuizPageView]{Item: &updated}
	s.settle(ctx, sess, &result, "update", id, q)
	return result, nil
}

// Delete removes a question.
func (s *QuizService) Delete(ctx context.Context, sess domain.Session, id string, q ListQuery) (Mutation[domain.QuizQuestion, QuizPageView], error) {
	if strings.TrimSpace(id) == "" {
		return Mutation[domain.QuizQuestion, QuizPageView]{}, domain.ErrNotFound
	}
	if err := s.api.DeleteQuiz(ctx, sess.AccessToken, id); err != nil {
		return Mutation[domain.QuizQuestion, QuizPageView]{}, err
	}
	var result Mutation[domain.QuizQuestion, QuizPageView]
	s.settle(ctx, sess, &result, "delete", id, q)
	return result, nil
}

// settle runs after a successful write: audit, invalidate, then exactly one
// re-fetch of the caller's view. A failed re-fetch does not undo the write.
func (s *QuizService) settle(ctx context.Context, sess domain.Session, result *Mutation[domain.QuizQuestion, QuizPageView], action, id string, q ListQuery) {
	record(ctx, s.audit, s.now, sess, action, "quiz", id)
	if err := s.cache.Invalidate(ctx, collectionQuizzes); err != nil {
		log.Printf("quiz cache invalidate failed: %v", err)
	}
	view, err := s.View(ctx, sess, q)
	if err != nil {
		result.RefreshError = UserMessage(err)
		return
	}
	result.View = view
}

func (s *QuizService) categories(ctx context.Context, sess domain.Session) ([]domain.Category, error) {
	raw, err := s.cache.Fetch(ctx, collectionCategories, "lookup", func(ctx context.Context) ([]byte, error) {
		categories, _, err := s.api.ListCategories(ctx, sess.AccessToken, 0)
		if err != nil {
			return nil, err
		}
		return json.Marshal(categories)
	})
	if err != nil {
		return nil, err
	}
	var categories []domain.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("decode cached categories: %w", err)
	}
	return categories, nil
}

func needsResolution(questions []domain.QuizQuestion) bool {
	for _, q := range questions {
		if q.Category.Kind == domain.CategoryUnresolved {
			return true
		}
	}
	return false
}

func firstID(questions []domain.QuizQuestion) string {
	if len(questions) == 0 {
		return ""
	}
	return questions[0].ID
}

// record writes an audit entry; failures are logged and never fail the write.
func record(ctx context.Context, audit AuditLog, now func() time.Time, sess domain.Session, action, resource, id string) {
	if audit == nil {
		return
	}
	actor := sess.Email
	if actor == "" {
		actor = sess.UserID
	}
	_, err := audit.Record(ctx, domain.AuditEntry{
		Actor:      actor,
		Action:     action,
		Resource:   resource,
		ResourceID: id,
		CreatedAt:  now().UTC(),
	})
	if err != nil {
		log.Printf("audit %s %s failed: %v", action, resource, err)
	}
}
