package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"quiz-admin-console/internal/domain"
)

// ListUsers fetches one page of platform users.
func (c *Client) ListUsers(ctx context.Context, token string, page, limit int) (domain.UserPage, error) {
	env, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/users",
		query:  pageQuery(page, limit, ""),
		token:  token,
	})
	if err != nil {
		return domain.UserPage{}, err
	}
	items := []domain.User{}
	if err := decodeData(env, &items); err != nil {
		return domain.UserPage{}, err
	}
	return domain.UserPage{Items: items, Pagination: env.paging()}, nil
}

// ListRanking fetches one page of the leaderboard. The backend nests the rows
// and paging under data.
func (c *Client) ListRanking(ctx context.Context, token string, page, limit int) (domain.RankingPage, error) {
	env, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/ranking",
		query:  pageQuery(page, limit, ""),
		token:  token,
	})
	if err != nil {
		return domain.RankingPage{}, err
	}

	raw := bytes.TrimSpace(env.Data)
	if len(raw) > 0 && raw[0] == '[' {
		items := []domain.RankingEntry{}
		if err := json.Unmarshal(raw, &items); err != nil {
			return domain.RankingPage{}, fmt.Errorf("decode data: %w", err)
		}
		return domain.RankingPage{Items: items, Pagination: env.paging()}, nil
	}

	var nested struct {
		Ranking    []domain.RankingEntry `json:"ranking"`
		Pagination *domain.Pagination    `json:"pagination"`
	}
	if err := decodeData(env, &nested); err != nil {
		return domain.RankingPage{}, err
	}
	out := domain.RankingPage{Items: nested.Ranking, Pagination: env.paging()}
	if out.Items == nil {
		out.Items = []domain.RankingEntry{}
	}
	if nested.Pagination != nil {
		out.Pagination = *nested.Pagination
	}
	return out, nil
}
