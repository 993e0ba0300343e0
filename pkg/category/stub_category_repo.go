package category

import "context"

type StubCategoryRepo struct {
	data []Category
}

func NewStubCategoryRepo() *StubCategoryRepo {
	return &StubCategoryRepo{}
}

func (s *StubCategoryRepo) Add(categories ...Category) {
	s.data = append(s.data, categories...)
}

func (s *StubCategoryRepo) GetAll(ctx context.Context, userId int, kind Kind) ([]Category, error) {
	var result []Category
	for _, c := range s.data {
		if kind != "" && c.Kind != kind {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (s *StubCategoryRepo) GetByID(ctx context.Context, id string) (Category, error) {
	for _, c := range s.data {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrCategoryNotFound
}

func (s *StubCategoryRepo) Cleanup() {
	s.data = nil
}
