package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"quiz-admin-console/internal/domain"
)

// ListCategories fetches one page of categories. Page 0 asks for the backend default.
func (c *Client) ListCategories(ctx context.Context, token string, page int) ([]domain.Category, domain.Pagination, error) {
	env, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/quiz-category",
		query:  pageQuery(page, 0, ""),
		token:  token,
	})
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	items := []domain.Category{}
	if err := decodeData(env, &items); err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, env.paging(), nil
}

// CreateCategory uploads a new category with its optional image.
func (c *Client) CreateCategory(ctx context.Context, token string, in domain.CategoryInput) (domain.Category, error) {
	return c.saveCategory(ctx, http.MethodPost, "/quiz-category", token, in)
}

// UpdateCategory replaces a category; a nil image keeps the current one.
func (c *Client) UpdateCategory(ctx context.Context, token, id string, in domain.CategoryInput) (domain.Category, error) {
	return c.saveCategory(ctx, http.MethodPut, "/quiz-category/"+url.PathEscape(id), token, in)
}

func (c *Client) saveCategory(ctx context.Context, method, path, token string, in domain.CategoryInput) (domain.Category, error) {
	form := &multipartForm{fileField: "quizCategoryImage", file: in.Image}
	form.add("quizCategoryName", in.Name)
	form.add("quizCategoryState", in.State)
	form.add("quizPoint", strconv.FormatFloat(in.Points, 'f', -1, 64))
	form.add("quizTotalTime", strconv.FormatFloat(in.TotalTime, 'f', -1, 64))
	form.add("quizCategoryDetails", in.Details)
	req, err := form.request(method, path, token)
	if err != nil {
		return domain.Category{}, err
	}
	env, err := c.do(ctx, req)
	if err != nil {
		return domain.Category{}, err
	}
	var out domain.Category
	if err := decodeData(env, &out); err != nil {
		return domain.Category{}, err
	}
	return out, nil
}

// DeleteCategory removes a category and, on the backend, its questions.
func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/quiz-category/" + url.PathEscape(id), token: token})
	return err
}

// planPayload sends prices as JSON numbers rather than decimal strings.
type planPayload struct {
	Name              string      `json:"subscriptionPlanName"`
	MonthlyPrice      json.Number `json:"subscriptionMonthlyPlanPrice"`
	YearlyPrice       json.Number `json:"subscriptionYearlyPlanPrice"`
	Details           []string    `json:"subscriptionDetailsList"`
	AllowedCategories []string    `json:"allowedQuizCategories"`
}

func newPlanPayload(in domain.SubscriptionPlanInput) planPayload {
	allowed := in.AllowedCategories
	if allowed == nil {
		allowed = []string{}
	}
	return planPayload{
		Name:              in.Name,
		MonthlyPrice:      json.Number(in.MonthlyPrice.String()),
		YearlyPrice:       json.Number(in.YearlyPrice.String()),
		Details:           in.Details,
		AllowedCategories: allowed,
	}
}

// ListSubscriptionPlans fetches every plan.
func (c *Client) ListSubscriptionPlans(ctx context.Context, token string) ([]domain.SubscriptionPlan, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: "/subscription-plan", token: token})
	if err != nil {
		return nil, err
	}
	items := []domain.SubscriptionPlan{}
	if err := decodeData(env, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateSubscriptionPlan(ctx context.Context, token string, in domain.SubscriptionPlanInput) (domain.SubscriptionPlan, error) {
	return c.savePlan(ctx, http.MethodPost, "/subscription-plan", token, in)
}

func (c *Client) UpdateSubscriptionPlan(ctx context.Context, token, id string, in domain.SubscriptionPlanInput) (domain.SubscriptionPlan, error) {
	return c.savePlan(ctx, http.MethodPut, "/subscription-plan/"+url.PathEscape(id), token, in)
}

func (c *Client) savePlan(ctx context.Context, method, path, token string, in domain.SubscriptionPlanInput) (domain.SubscriptionPlan, error) {
	req, err := jsonRequest(method, path, token, newPlanPayload(in))
	if err != nil {
		return domain.SubscriptionPlan{}, err
	}
	env, err := c.do(ctx, req)
	if err != nil {
		return domain.SubscriptionPlan{}, err
	}
	var out domain.SubscriptionPlan
	if err := decodeData(env, &out); err != nil {
		return domain.SubscriptionPlan{}, err
	}
	return out, nil
}

func (c *Client) DeleteSubscriptionPlan(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/subscription-plan/" + url.PathEscape(id), token: token})
	return err
}

// ListJokes fetches one page of jokes.
func (c *Client) ListJokes(ctx context.Context, token string, page int) ([]domain.Joke, domain.Pagination, error) {
	env, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/joke",
		query:  pageQuery(page, 0, ""),
		token:  token,
	})
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	items := []domain.Joke{}
	if err := decodeData(env, &items); err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, env.paging(), nil
}

func (c *Client) CreateJoke(ctx context.Context, token string, in domain.JokeInput) (domain.Joke, error) {
	return c.saveJoke(ctx, http.MethodPost, "/joke", token, in)
}

func (c *Client) UpdateJoke(ctx context.Context, token, id string, in domain.JokeInput) (domain.Joke, error) {
	return c.saveJoke(ctx, http.MethodPut, "/joke/"+url.PathEscape(id), token, in)
}

func (c *Client) saveJoke(ctx context.Context, method, path, token string, in domain.JokeInput) (domain.Joke, error) {
	form := &multipartForm{fileField: "jokeImage", file: in.Image}
	form.add("text", in.Text)
	form.add("jokeAnswer", in.Answer)
	req, err := form.request(method, path, token)
	if err != nil {
		return domain.Joke{}, err
	}
	env, err := c.do(ctx, req)
	if err != nil {
		return domain.Joke{}, err
	}
	var out domain.Joke
	if err := decodeData(env, &out); err != nil {
		return domain.Joke{}, err
	}
	return out, nil
}

func (c *Client) DeleteJoke(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/joke/" + url.PathEscape(id), token: token})
	return err
}
