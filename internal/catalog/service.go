package catalog

import (
	"context"
	"errors"
	"time"

	"marvelous/internal/comic"
	"marvelous/internal/person"
)

// PersonFinder loads a person with their comics in association order.
type PersonFinder interface {
	FindByID(ctx context.Context, id int64) (person.Person, error)
}

// ComicFinder loads a stored comic.
type ComicFinder interface {
	FindByID(ctx context.Context, id int64) (comic.Comic, error)
}

type Service struct {
	people PersonFinder
	comics ComicFinder
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces the wall clock used to pick the discount weekday.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(people PersonFinder, comics ComicFinder, opts ...Option) *Service {
	s := &Service{people: people, comics: comics, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComicsByPerson returns the person's comics priced for today. An unknown
// person has no comics.
func (s *Service) ComicsByPerson(ctx context.Context, personID int64) ([]comic.Response, error) {
	p, err := s.people.FindByID(ctx, personID)
	if err != nil {
		if errors.Is(err, person.ErrNotFound) {
			return []comic.Response{}, nil
		}
		return nil, err
	}

	weekday := comic.ISOWeekday(s.now())
	out := make([]comic.Response, 0, len(p.Comics))
	for _, c := range p.Comics {
		out = append(out, comic.ToResponse(c, comic.HasDiscount(c.ISBN, weekday)))
	}
	return out, nil
}

// ComicByID returns a single stored comic priced for today.
func (s *Service) ComicByID(ctx context.Context, id int64) (comic.Response, error) {
	c, err := s.comics.FindByID(ctx, id)
	if err != nil {
		return comic.Response{}, err
	}
	return comic.ToResponse(c, comic.HasDiscount(c.ISBN, comic.ISOWeekday(s.now()))), nil
}
