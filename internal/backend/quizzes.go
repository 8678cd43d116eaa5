package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"quiz-admin-console/internal/domain"
)

// ListQuizzes fetches one page of questions, optionally filtered by the backend's search.
func (c *Client) ListQuizzes(ctx context.Context, token string, page int, search string) (domain.QuizPage, error) {
	env, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/quiz",
		query:  pageQuery(page, 0, search),
		token:  token,
	})
	if err != nil {
		return domain.QuizPage{}, err
	}
	items := []domain.QuizQuestion{}
	if err := decodeData(env, &items); err != nil {
		return domain.QuizPage{}, err
	}
	return domain.QuizPage{Items: items, Pagination: env.paging()}, nil
}

// CreateQuiz creates a single question.
func (c *Client) CreateQuiz(ctx context.Context, token string, in domain.QuizInput) ([]domain.QuizQuestion, error) {
	return c.createQuizzes(ctx, token, in)
}

// CreateQuizzes creates several questions in one category.
func (c *Client) CreateQuizzes(ctx context.Context, token string, in domain.BulkQuizInput) ([]domain.QuizQuestion, error) {
	return c.createQuizzes(ctx, token, in)
}

func (c *Client) createQuizzes(ctx context.Context, token string, payload any) ([]domain.QuizQuestion, error) {
	req, err := jsonRequest(http.MethodPost, "/quiz", token, payload)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeQuestions(env.Data)
}

// UpdateQuiz replaces a question.
func (c *Client) UpdateQuiz(ctx context.Context, token, id string, in domain.QuizInput) (domain.QuizQuestion, error) {
	req, err := jsonRequest(http.MethodPut, "/quiz/"+url.PathEscape(id), token, in)
	if err != nil {
		return domain.QuizQuestion{}, err
	}
	env, err := c.do(ctx, req)
	if err != nil {
		return domain.QuizQuestion{}, err
	}
	var q domain.QuizQuestion
	if err := decodeData(env, &q); err != nil {
		return domain.QuizQuestion{}, err
	}
	return q, nil
}

// DeleteQuiz removes a question. Any 2xx counts as success.
func (c *Client) DeleteQuiz(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/quiz/" + url.PathEscape(id), token: token})
	return err
}

// decodeQuestions accepts either one created document or a list of them.
func decodeQuestions(raw json.RawMessage) ([]domain.QuizQuestion, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.QuizQuestion{}, nil
	}
	if raw[0] == '[' {
		var items []domain.QuizQuestion
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
		return items, nil
	}
	var wrapped struct {
		Quizzes []domain.QuizQuestion `json:"quizzes"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Quizzes) > 0 {
		return wrapped.Quizzes, nil
	}
	var one domain.QuizQuestion
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return []domain.QuizQuestion{one}, nil
}
