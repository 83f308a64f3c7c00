package person

import (
	"context"
)

// Service provides person registration and lookup.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Person, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Person, error) {
	return s.repo.FindByID(ctx, id)
}

// Register validates and stores a new person, returning its id.
func (s *Service) Register(ctx context.Context, p Person) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	p.ID = 0
	if err := s.repo.Save(ctx, &p); err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (s *Service) AttachComics(ctx context.Context, personID int64, comicIDs []int64) error {
	if len(comicIDs) == 0 {
		return nil
	}
	return s.repo.AttachComics(ctx, personID, comicIDs)
}
