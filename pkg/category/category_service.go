package category

import (
	"context"
	"fmt"

	"github.com/Fayeur9/money-manager/pkg/user"
)

type Service interface {
	GetAll(ctx context.Context, kind Kind) ([]Category, error)
	GetIndex(ctx context.Context, kind Kind) (*Index, error)
}

type CategoryServiceImpl struct {
	repo Repo
}

func NewCategoryService(repo Repo) *CategoryServiceImpl {
	return &CategoryServiceImpl{repo: repo}
}

func (s *CategoryServiceImpl) GetAll(ctx context.Context, kind Kind) ([]Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId, kind)
}

func (s *CategoryServiceImpl) GetIndex(ctx context.Context, kind Kind) (*Index, error) {
	categories, err := s.GetAll(ctx, kind)
	if err != nil {
		return nil, err
	}
	return NewIndex(categories), nil
}
