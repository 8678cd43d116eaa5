package app

import (
	"context"
	"time"

	"quiz-admin-console/internal/backend"
	"quiz-admin-console/internal/domain"
)

// SessionRepository abstracts where console sessions live (in-memory, Redis).
type SessionRepository interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// PageCache keeps serialized backend list responses per collection. Invalidate
// drops every cached entry of one collection.
type PageCache interface {
	Fetch(ctx context.Context, collection, key string, load func(context.Context) ([]byte, error)) ([]byte, error)
	Invalidate(ctx context.Context, collection string) error
}

// AuditLog stores a trail of successful console mutations.
type AuditLog interface {
	Record(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// QuizAPI is the backend surface used by QuizService.
type QuizAPI interface {
	ListQuizzes(ctx context.Context, token string, page int, search string) (domain.QuizPage, error)
	CreateQuiz(ctx context.Context, token string, in domain.QuizInput) ([]domain.QuizQuestion, error)
	CreateQuizzes(ctx context.Context, token string, in domain.BulkQuizInput) ([]domain.QuizQuestion, error)
	UpdateQuiz(ctx context.Context, token, id string, in domain.QuizInput) (domain.QuizQuestion, error)
	DeleteQuiz(ctx context.Context, token, id string) error
	ListCategories(ctx context.Context, token string, page int) ([]domain.Category, domain.Pagination, error)
}

// CatalogAPI is the backend surface used by CatalogService.
type CatalogAPI interface {
	ListCategories(ctx context.Context, token string, page int) ([]domain.Category, domain.Pagination, error)
	CreateCategory(ctx context.Context, token string, in domain.CategoryInput) (domain.Category, error)
	UpdateCategory(ctx context.Context, token, id string, in domain.CategoryInput) (domain.Category, error)
	DeleteCategory(ctx context.Context, token, id string) error
	ListSubscriptionPlans(ctx context.Context, token string) ([]domain.SubscriptionPlan, error)
	CreateSubscriptionPlan(ctx context.Context, token string, in domain.SubscriptionPlanInput) (domain.SubscriptionPlan, error)
	UpdateSubscriptionPlan(ctx context.Context, token, id string, in domain.SubscriptionPlanInput) (domain.SubscriptionPlan, error)
	DeleteSubscriptionPlan(ctx context.Context, token, id string) error
	ListJokes(ctx context.Context, token string, page int) ([]domain.Joke, domain.Pagination, error)
	CreateJoke(ctx context.Context, token string, in domain.JokeInput) (domain.Joke, error)
	UpdateJoke(ctx context.Context, token, id string, in domain.JokeInput) (domain.Joke, error)
	DeleteJoke(ctx context.Context, token, id string) error
}

// DirectoryAPI is the backend surface used by DirectoryService.
type DirectoryAPI interface {
	ListUsers(ctx context.Context, token string, page, limit int) (domain.UserPage, error)
	ListRanking(ctx context.Context, token string, page, limit int) (domain.RankingPage, error)
}

// AccountAPI is the backend surface used by AccountService.
type AccountAPI interface {
	Login(ctx context.Context, email, password string) (backend.LoginResult, error)
	ChangePassword(ctx context.Context, token, current, next, confirm string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	ResetPassword(ctx context.Context, email, otp, next, confirm string) (string, error)
}

// Mutation is the settled result of a create/update/delete: the affected item
// and the collection view re-fetched after the write.
type Mutation[T any, V any] struct {
	Item         *T     `json:"item,omitempty"`
	Items        []T    `json:"items,omitempty"`
	View         V      `json:"view"`
	RefreshError string `json:"refreshError,omitempty"`
}

// Cache collections.
const (
	collectionQuizzes    = "quizzes"
	collectionCategories = "categories"
	collectionPlans      = "subscription-plans"
	collectionJokes      = "jokes"
)
