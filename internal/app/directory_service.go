package app

import (
	"context"

	"quiz-admin-console/internal/domain"
)

const (
	defaultUserLimit    = 10
	defaultRankingLimit = 10
	rankingPageWindow   = 3
)

// UserListView is one page of the user table.
type UserListView struct {
	Items []domain.User `json:"items"`
	Pager Pager         `json:"pager"`
}

// RankingView is one page of the leaderboard.
type RankingView struct {
	Items []domain.RankingEntry `json:"items"`
	Pager Pager                 `json:"pager"`
}

// DirectoryService serves the read-only user and ranking screens. They are
// not cached: both change without console writes.
type DirectoryService struct {
	api DirectoryAPI
}

func NewDirectoryService(api DirectoryAPI) *DirectoryService {
	return &DirectoryService{api: api}
}

func (s *DirectoryService) Users(ctx context.Context, sess domain.Session, page, limit int) (UserListView, error) {
	page, limit = clampPage(page, limit, defaultUserLimit)
	result, err := s.api.ListUsers(ctx, sess.AccessToken, page, limit)
	if err != nil {
		return UserListView{}, err
	}
	if result.Pagination.Limit == 0 {
		result.Pagination.Limit = limit
	}
	return UserListView{Items: result.Items, Pager: NewPager(result.Pagination, page, 0)}, nil
}

// Ranking returns one leaderboard page. Entries without a rank are numbered
// from their position.
func (s *DirectoryService) Ranking(ctx context.Context, sess domain.Session, page, limit int) (RankingView, error) {
	page, limit = clampPage(page, limit, defaultRankingLimit)
	result, err := s.api.ListRanking(ctx, sess.AccessToken, page, limit)
	if err != nil {
		return RankingView{}, err
	}
	if result.Pagination.Limit == 0 {
		result.Pagination.Limit = limit
	}
	for i := range result.Items {
		if result.Items[i].Rank == 0 {
			result.Items[i].Rank = (page-1)*limit + i + 1
		}
	}
	return RankingView{Items: result.Items, Pager: NewPager(result.Pagination, page, rankingPageWindow)}, nil
}

func clampPage(page, limit, fallback int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = fallback
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
