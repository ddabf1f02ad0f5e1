package agencies

import "context"

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Agency, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	agencies, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return agencies, total, nil
}
