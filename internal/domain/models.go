package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// UncategorizedID is the bucket id for questions without a resolved category.
	// It is never a backend identifier.
	UncategorizedID = "uncategorized"
	// UncategorizedName is the display name of the UncategorizedID bucket.
	UncategorizedName = "Uncategorized"
	// AllCategories selects every bucket of a grouped view.
	AllCategories = "all"
)

// CategoryRefKind tells how much the backend told us about a question's category.
type CategoryRefKind int

const (
	CategoryAbsent CategoryRefKind = iota
	CategoryUnresolved
	CategoryResolved
)

// CategoryRef is the category of a quiz question. The backend sends either a bare
// id, an embedded category document, or nothing; the shape is decoded once here.
type CategoryRef struct {
	Kind CategoryRefKind
	ID   string
	Name string
}

func AbsentCategory() CategoryRef { return CategoryRef{Kind: CategoryAbsent} }

func UnresolvedCategory(id string) CategoryRef {
	if id == "" {
		return AbsentCategory()
	}
	return CategoryRef{Kind: CategoryUnresolved, ID: id}
}

func ResolvedCategory(id, name string) CategoryRef {
	return CategoryRef{Kind: CategoryResolved, ID: id, Name: name}
}

type categoryDoc struct {
	ID   string `json:"_id"`
	Name string `json:"quizCategoryName"`
}

func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = AbsentCategory()
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*c = UnresolvedCategory(id)
		return nil
	case data[0] == '{':
		var doc categoryDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		if doc.ID == "" {
			*c = AbsentCategory()
			return nil
		}
		*c = ResolvedCategory(doc.ID, doc.Name)
		return nil
	default:
		return fmt.Errorf("quiz category: unexpected json %s", data)
	}
}

func (c CategoryRef) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CategoryResolved:
		return json.Marshal(categoryDoc{ID: c.ID, Name: c.Name})
	case CategoryUnresolved:
		return json.Marshal(c.ID)
	default:
		return []byte("null"), nil
	}
}

// QuizQuestion is a multiple-choice question as served by the backend.
type QuizQuestion struct {
	ID        string      `json:"_id"`
	Category  CategoryRef `json:"quizCategory"`
	Question  string      `json:"quizQuestion"`
	Options   []string    `json:"quizOptions"`
	Answer    string      `json:"quizAnswer"`
	Points    float64     `json:"quizPoint"`
	IsActive  bool        `json:"isActive"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt *time.Time  `json:"updatedAt,omitempty"`
}

// QuizInput is the body of a single question create/update.
type QuizInput struct {
	CategoryID string   `json:"quizCategory" validate:"required"`
	Question   string   `json:"quizQuestion" validate:"required"`
	Options    []string `json:"quizOptions" validate:"min=2,max=6,dive,required"`
	Answer     string   `json:"quizAnswer" validate:"required"`
	Points     float64  `json:"quizPoint" validate:"gte=0"`
	IsActive   *bool    `json:"isActive,omitempty"`
}

// BulkQuizItem is one question of a bulk create.
type BulkQuizItem struct {
	Question string   `json:"quizQuestion" validate:"required"`
	Options  []string `json:"quizOptions" validate:"min=2,max=6,dive,required"`
	Answer   string   `json:"quizAnswer" validate:"required"`
	Points   float64  `json:"quizPoint" validate:"gte=0"`
	IsActive *bool    `json:"isActive,omitempty"`
}

// BulkQuizInput creates several questions in one category.
type BulkQuizInput struct {
	CategoryID string         `json:"quizCategory" validate:"required"`
	Quizzes    []BulkQuizItem `json:"quizzes" validate:"min=1,dive"`
}

// Category is a named grouping of questions with scoring and time settings.
type Category struct {
	ID        string  `json:"_id"`
	Name      string  `json:"quizCategoryName"`
	State     string  `json:"quizCategoryState"`
	Points    float64 `json:"quizPoint"`
	TotalTime float64 `json:"quizTotalTime"`
	Details   string  `json:"quizCategoryDetails"`
	Image     string  `json:"quizCategoryImage,omitempty"`
	QuizCount int     `json:"quizCount,omitempty"`
}

// Upload is an optional file forwarded to the backend as a multipart part.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CategoryInput is the category form.
type CategoryInput struct {
	Name      string  `json:"quizCategoryName" validate:"min=3"`
	State     string  `json:"quizCategoryState" validate:"oneof=Active Inactive"`
	Points    float64 `json:"quizPoint" validate:"gte=0"`
	TotalTime float64 `json:"quizTotalTime" validate:"gte=0"`
	Details   string  `json:"quizCategoryDetails" validate:"min=10"`
	Image     *Upload `json:"-"`
}

// SubscriptionPlan is a priced tier gating access to categories.
type SubscriptionPlan struct {
	ID                string          `json:"_id"`
	Name              string          `json:"subscriptionPlanName"`
	MonthlyPrice      decimal.Decimal `json:"subscriptionMonthlyPlanPrice"`
	YearlyPrice       decimal.Decimal `json:"subscriptionYearlyPlanPrice"`
	Details           []string        `json:"subscriptionDetailsList"`
	AllowedCategories []string        `json:"allowedQuizCategories"`
}

// IsFree reports whether both prices are zero.
func (p SubscriptionPlan) IsFree() bool {
	return p.MonthlyPrice.IsZero() && p.YearlyPrice.IsZero()
}

// SubscriptionPlanInput is the plan form.
type SubscriptionPlanInput struct {
	Name              string          `json:"subscriptionPlanName" validate:"required"`
	MonthlyPrice      decimal.Decimal `json:"subscriptionMonthlyPlanPrice"`
	YearlyPrice       decimal.Decimal `json:"subscriptionYearlyPlanPrice"`
	Details           []string        `json:"subscriptionDetailsList" validate:"min=1,dive,required"`
	AllowedCategories []string        `json:"allowedQuizCategories"`
}

// Joke is an image-backed joke entry.
type Joke struct {
	ID        string     `json:"_id"`
	Text      string     `json:"text"`
	Answer    string     `json:"jokeAnswer"`
	ImageURL  string     `json:"imageUrl"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// JokeInput is the joke form. Image is mandatory when creating.
type JokeInput struct {
	Text   string  `json:"text" validate:"required"`
	Answer string  `json:"jokeAnswer" validate:"required"`
	Image  *Upload `json:"-"`
}

// User is a platform user as listed in the console.
type User struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	PlanName string `json:"planName"`
	Status   string `json:"status"`
	Role     string `json:"role,omitempty"`
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	ID       string  `json:"_id"`
	FullName string  `json:"fullName"`
	Avatar   string  `json:"avatar"`
	Mark     float64 `json:"mark"`
	Rank     int     `json:"rank,omitempty"`
}

// Pagination mirrors the backend's paging metadata.
type Pagination struct {
	Page        int `json:"page"`
	Limit       int `json:"limit"`
	Total       int `json:"total"`
	TotalPages  int `json:"totalPages"`
	ShowingFrom int `json:"showingFrom"`
	ShowingTo   int `json:"showingTo"`
}

// QuizPage is one fetched page of questions.
type QuizPage struct {
	Items      []QuizQuestion `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// UserPage is one fetched page of users.
type UserPage struct {
	Items      []User     `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// RankingPage is one fetched page of the leaderboard.
type RankingPage struct {
	Items      []RankingEntry `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// CategoryGroup is a derived bucket of questions sharing a category.
type CategoryGroup struct {
	CategoryID   string         `json:"categoryId"`
	CategoryName string         `json:"categoryName"`
	Items        []QuizQuestion `json:"items"`
}

// CategoryStat is the sidebar count of a CategoryGroup.
type CategoryStat struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Count        int    `json:"count"`
}

// Session is a signed-in console user holding the backend token pair.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuditEntry records one successful console mutation.
type AuditEntry struct {
	ID         int64     `json:"id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId"`
	CreatedAt  time.Time `json:"createdAt"`
}
