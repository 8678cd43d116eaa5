package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"quiz-admin-console/internal/domain"
	"quiz-admin-console/internal/validation"
)

// CategoryListView is the category table with an optional name filter.
type CategoryListView struct {
	Items  []domain.Category `json:"items"`
	Search string            `json:"search"`
	Pager  Pager             `json:"pager"`
}

// PlanCard is one subscription plan as rendered on the plans screen.
type PlanCard struct {
	domain.SubscriptionPlan
	Free         bool `json:"free"`
	AllowedCount int  `json:"allowedCount"`
}

// PlanListView lists every subscription plan.
type PlanListView struct {
	Items []PlanCard `json:"items"`
}

// JokeListView is one page of jokes.
type JokeListView struct {
	Items []domain.Joke `json:"items"`
	Pager Pager         `json:"pager"`
}

type categoryPage struct {
	Items      []domain.Category `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
}

type jokePage struct {
	Items      []domain.Joke     `json:"items"`
	Pagination domain.Pagination `json:"pagination"`
}

// CatalogService manages categories, subscription plans and jokes.
type CatalogService struct {
	api       CatalogAPI
	cache     PageCache
	audit     AuditLog
	validator *validation.Validator
	now       func() time.Time
}

func NewCatalogService(api CatalogAPI, cache PageCache, audit AuditLog, validator *validation.Validator) *CatalogService {
	return &CatalogService{api: api, cache: cache, audit: audit, validator: validator, now: time.Now}
}

// Categories lists one page of categories, keeping only names that contain
// search (case-insensitive).
func (s *CatalogService) Categories(ctx context.Context, sess domain.Session, page int, search string) (CategoryListView, error) {
	if page < 1 {
		page = 1
	}
	var result categoryPage
	err := s.cached(ctx, collectionCategories, fmt.Sprintf("page|%d", page), &result, func(ctx context.Context) (any, error) {
		items, paging, err := s.api.ListCategories(ctx, sess.AccessToken, page)
		return categoryPage{Items: items, Pagination: paging}, err
	})
	if err != nil {
		return CategoryListView{}, err
	}

	search = strings.TrimSpace(search)
	needle := strings.ToLower(search)
	items := make([]domain.Category, 0, len(result.Items))
	for _, c := range result.Items {
		if needle == "" || strings.Contains(strings.ToLower(c.Name), needle) {
			items = append(items, c)
		}
	}
	return CategoryListView{Items: items, Search: search, Pager: NewPager(result.Pagination, page, 0)}, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, sess domain.Session, in domain.CategoryInput) (Mutation[domain.Category, CategoryListView], error) {
	if err := s.validator.Category(&in); err != nil {
		return Mutation[domain.Category, CategoryListView]{}, err
	}
	created, err := s.api.CreateCategory(ctx, sess.AccessToken, in)
	if err != nil {
		return Mutation[domain.Category, CategoryListView]{}, err
	}
	return s.settleCategories(ctx, sess, &created, "create", created.ID), nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, sess domain.Session, id string, in domain.CategoryInput) (Mutation[domain.Category, CategoryListView], error) {
	if strings.TrimSpace(id) == "" {
		return Mutation[domain.Category, CategoryListView]{}, domain.ErrNotFound
	}
	if err := s.validator.Category(&in); err != nil {
		return Mutation[domain.Category, CategoryListView]{}, err
	}
	updated, err := s.api.UpdateCategory(ctx, sess.AccessToken, id, in)
	if err != nil {
		return Mutation[domain.Category, CategoryListView]{}, err
	}
	return s.settleCategories(ctx, sess, &updated, "update", id), nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, sess domain.Session, id string) (Mutation[domain.Category, CategoryListView], error) {
	if strings.TrimSpace(id) == "" {
		return Mutation[domain.Category, CategoryListView]{}, domain.ErrNotFound
	}
	if err := s.api.DeleteCategory(ctx, sess.AccessToken, id); err != nil {
		return Mutation[domain.Category, CategoryListView]{}, err
	}
	return s.settleCategories(ctx, sess, nil, "delete", id), nil
}

// settleCategories also drops cached question pages: they embed category names.
func (s *CatalogService) settleCategories(ctx context.Context, sess domain.Session, item *domain.Category, action, id string) Mutation[domain.Category, CategoryListView] {
	record(ctx, s.audit, s.now, sess, action, "category", id)
	s.invalidate(ctx, collectionCategories, collectionQuizzes)
	result := Mutation[domain.Category, CategoryListView]{Item: item}
	view, err := s.Categories(ctx, sess, 1, "")
	if err != nil {
		result.RefreshError = UserMessage(err)
		return result
	}
	result.View = view
	return result
}

// Plans lists every subscription plan.
func (s *CatalogService) Plans(ctx context.Context, sess domain.Session) (PlanListView, error) {
	var plans []domain.SubscriptionPlan
	err := s.cached(ctx, collectionPlans, "all", &plans, func(ctx context.Context) (any, error) {
		plans, err := s.api.ListSubscriptionPlans(ctx, sess.AccessToken)
		return plans, err
	})
	if err != nil {
		return PlanListView{}, err
	}
	cards := make([]PlanCard, 0, len(plans))
	for _, p := range plans {
		cards = append(cards, PlanCard{SubscriptionPlan: p, Free: p.IsFree(), AllowedCount: len(p.AllowedCategories)})
	}
	return PlanListView{Items: cards}, nil
}

func (s *CatalogService) CreatePlan(ctx context.Context, sess domain.Session, in domain.SubscriptionPlanInput) (Mutation[domain.SubscriptionPlan, PlanListView], error) {
	if err := s.validator.SubscriptionPlan(in); err != nil {
		return Mutation[domain.SubscriptionPlan, PlanListView]{}, err
	}
	created, err := s.api.CreateSubscriptionPlan(ctx, sess.AccessToken, in)
	if err != nil {
		return Mutation[domain.SubscriptionPlan, PlanListView]{}, err
	}
	return s.settlePlans(ctx, sess, &created, "create", created.ID), nil
}

func (s *CatalogService) UpdatePlan(ctx context.Context, sess domain.Session, id string, in domain.SubscriptionPlanInput) (Mutation[domain.SubscriptionPlan, PlanListView], error) {
	if strings.TrimSpace(id) == "" {
		return Mutation[domain.SubscriptionPlan, PlanListView]{}, domain.ErrNotFound
	}
	if err := s.validator.SubscriptionPlan(in); err != nil {
		return Mutation[domain.SubscriptionPlan, PlanListView]{}, err
	}
	updated, err := s.api.UpdateSubscriptionPlan(ctx, sess.AccessToken, id, in)
	if err != nil {
		return Mutation[domain.SubscriptionPlan, PlanListView]{}, err
	}
	return s.settlePlans(ctx, sess, &updated, "update", id), nil
}

func (s *CatalogService) DeletePlan(ctx context.Context, sess domain.Session, id string) (Mutation[domain.SubscriptionPlan, PlanListView], error) {
	if strings.TrimSpace(id) == "" {
		return Mutation[domain.SubscriptionPlan, PlanListView]{}, domain.ErrNotFound
	}
	if err := s.api.DeleteSubscriptionPlan(ctx, sess.AccessToken, id); err != nil {
		return Mutation[domain.SubscriptionPlan, PlanListView]{}, err
	}
	return s.settlePlans(ctx, sess, nil, "delete", id), nil
}

func (s *CatalogService) settlePlans(ctx context.Context, sess domain.Session, item *domain.SubscriptionPlan, action, id string) Mutation[domain.SubscriptionPlan, PlanListView] {
	record(ctx, s.audit, s.now, sess, action, "subscription-plan", id)
	s.invalidate(ctx, collectionPlans)
	result := Mutation[domain.SubscriptionPlan, PlanListView]{Item: item}
	view, err := s.Plans(ctx, sess)
	if err != nil {
		result.RefreshError = UserMessage(err)
		return result
	}
	result.View = view
	return result
}

// Jokes lists one page of jokes.
func (s *CatalogService) Jokes(ctx context.Context, sess domain.Session, page int) (JokeListView, error) {
	if page < 1 {
		page = 1
	}
	var result jokePage
	err := s.cached(ctx, collectionJokes, fmt.Sprintf("page|%d", page), &result, func(ctx context.Context) (any, error) {
		items, paging, err := s.api.ListJokes(ctx, sess.AccessToken, page)
		return jokePage{Items: items, Pagination: paging}, err
	})
	if err != nil {
		return JokeListView{}, err
	}
	return JokeListView{Items: result.Items, Pager: NewPager(result.Pagination, page, 0)}, nil
}

func (s *CatalogService) CreateJoke(ctx context.Context, sess domain.Session, in domain.JokeInput) (Mutation[domain.Joke, JokeListView], error) {
	if err := s.validator.Joke(in, true); err != nil {
		return Mutation[domain.Joke, JokeListView]{}, err
	}
	created, err := s.api.CreateJoke(ctx, sess.AccessToken, in)
	if err != nil {
		return Mutation[domain.Joke, JokeListView]{}, err
	}
	return s.settleJokes(ctx, sess, &created, "create", created.ID), nil
}

func (s *CatalogService) UpdateJoke(ctx context.Context, sess domain.Session, id string, in domain.JokeInput) (Mutation[domain.Joke, JokeListView], error) {
	if strings.TrimSpace(id) == "" {
		return Mutation[domain.Joke, JokeListView]{}, domain.ErrNotFound
	}
	if err := s.validator.Joke(in, false); err != nil {
		return Mutation[domain.Joke, JokeListView]{}, err
	}
	updated, err := s.api.UpdateJoke(ctx, sess.AccessToken, id, in)
	if err != nil {
		return Mutation[domain.Joke, JokeListView]{}, err
	}
	return s.settleJokes(ctx, sess, &updated, "update", id), nil
}

func (s *CatalogService) DeleteJoke(ctx context.Context, sess domain.Session, id string) (Mutation[domain.Joke, JokeListView], error) {
	if strings.TrimSpace(id) == "" {
		return Mutation[domain.Joke, JokeListView]{}, domain.ErrNotFound
	}
	if err := s.api.DeleteJoke(ctx, sess.AccessToken, id); err != nil {
		return Mutation[domain.Joke, JokeListView]{}, err
	}
	return s.settleJokes(ctx, sess, nil, "delete", id), nil
}

func (s *CatalogService) settleJokes(ctx context.Context, sess domain.Session, item *domain.Joke, action, id string) Mutation[domain.Joke, JokeListView] {
	record(ctx, s.audit, s.now, sess, action, "joke", id)
	s.invalidate(ctx, collectionJokes)
	result := Mutation[domain.Joke, JokeListView]{Item: item}
	view, err := s.Jokes(ctx, sess, 1)
	if err != nil {
		result.RefreshError = UserMessage(err)
		return result
	}
	result.View = view
	return result
}

func (s *CatalogService) cached(ctx context.Context, collection, key string, out any, load func(context.Context) (any, error)) error {
	raw, err := s.cache.Fetch(ctx, collection, key, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode cached %s: %w", collection, err)
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, collections ...string) {
	for _, c := range collections {
		if err := s.cache.Invalidate(ctx, c); err != nil {
			log.Printf("%s cache invalidate failed: %v", c, err)
		}
	}
}
