package enrichment

import (
	"context"
	"errors"
	"testing"

	"marvelous/internal/comic"
	"marvelous/internal/person"
	"marvelous/internal/platform/marvel"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) GetComic(ctx context.Context, id int64) (*marvel.Response[marvel.Comic], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marvel.Response[marvel.Comic]), args.Error(1)
}

type mockComicRepo struct {
	mock.Mock
}

func (m *mockComicRepo) Save(ctx context.Context, c *comic.Comic, rawJSON []byte) error {
	args := m.Called(ctx, c, rawJSON)
	return args.Error(0)
}

func (m *mockComicRepo) FindByID(ctx context.Context, id int64) (comic.Comic, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(comic.Comic), args.Error(1)
}

type mockAttacher struct {
	mock.Mock
}

func (m *mockAttacher) AttachComics(ctx context.Context, personID int64, comicIDs []int64) error {
	args := m.Called(ctx, personID, comicIDs)
	return args.Error(0)
}

type mockRunRepo struct {
	mock.Mock
}

func (m *mockRunRepo) CreateRun(ctx context.Context, run *Run) (string, error) {
	args := m.Called(ctx, run)
	return args.String(0), args.Error(1)
}

func (m *mockRunRepo) UpdateRun(ctx context.Context, run *Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockRunRepo) LinkComicToRun(ctx context.Context, runID string, comicID int64) error {
	args := m.Called(ctx, runID, comicID)
	return args.Error(0)
}

func (m *mockRunRepo) FindRun(ctx context.Context, id string) (Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Run), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

func remoteComic(id int64, isbn string) marvel.Comic {
	return marvel.Comic{
		ID:          id,
		Title:       "Comic",
		Description: "Some description",
		ISBN:        isbn,
		Prices:      []marvel.Price{{Type: "printPrice", Price: decimal.RequireFromString("3.99")}},
		Creators: marvel.CreatorList{
			Available: ptr(int64(2)),
			Items:     []marvel.CreatorSummary{{Name: "Stan Lee"}, {Name: "Steve Ditko"}},
		},
	}
}

func found(c marvel.Comic) *marvel.Response[marvel.Comic] {
	return &marvel.Response[marvel.Comic]{
		Code: marvel.StatusOK,
		Data: marvel.Data[marvel.Comic]{Count: 1, Total: 1, Results: []marvel.Comic{c}},
	}
}

func notFound() *marvel.Response[marvel.Comic] {
	return &marvel.Response[marvel.Comic]{Code: "404", Status: "We couldn't find that comic_issue"}
}

func empty() *marvel.Response[marvel.Comic] {
	return &marvel.Response[marvel.Comic]{Code: marvel.StatusOK, Data: marvel.Data[marvel.Comic]{Count: 0}}
}

func TestService_Enrich(t *testing.T) {
	ctx := context.Background()

	t.Run("stores normalized comics in order", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mComics := new(mockComicRepo)
		s := NewService(mFetch, mComics, new(mockAttacher), new(mockRunRepo))

		mFetch.On("GetComic", ctx, int64(1)).Return(found(remoteComic(1, "978-1")), nil)
		mFetch.On("GetComic", ctx, int64(2)).Return(found(remoteComic(2, "978-2")), nil)
		mComics.On("Save", ctx, mock.MatchedBy(func(c *comic.Comic) bool {
			return c.Authors == "Stan Lee, Steve Ditko" && c.Price.Equal(decimal.RequireFromString("3.99"))
		}), mock.MatchedBy(func(raw []byte) bool { return len(raw) > 0 })).Return(nil).Twice()

		stored, err := s.Enrich(ctx, []int64{1, 2})
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, int64(1), stored[0].ID)
		assert.Equal(t, int64(2), stored[1].ID)

		mFetch.AssertExpectations(t)
		mComics.AssertExpectations(t)
	})

	t.Run("not found and empty results write nothing", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mComics := new(mockComicRepo)
		s := NewService(mFetch, mComics, new(mockAttacher), new(mockRunRepo))

		mFetch.On("GetComic", ctx, int64(404)).Return(notFound(), nil)
		mFetch.On("GetComic", ctx, int64(0)).Return(empty(), nil)

		stored, err := s.Enrich(ctx, []int64{404, 0})
		require.NoError(t, err)
		assert.Empty(t, stored)
		mComics.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("multiple results are skipped", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mComics := new(mockComicRepo)
		s := NewService(mFetch, mComics, new(mockAttacher), new(mockRunRepo))

		res := found(remoteComic(1, "978-1"))
		res.Data.Count = 2
		res.Data.Results = append(res.Data.Results, remoteComic(2, "978-2"))
		mFetch.On("GetComic", ctx, int64(1)).Return(res, nil)

		stored, err := s.Enrich(ctx, []int64{1})
		require.NoError(t, err)
		assert.Empty(t, stored)
		mComics.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate ids are processed twice", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mComics := new(mockComicRepo)
		s := NewService(mFetch, mComics, new(mockAttacher), new(mockRunRepo))

		mFetch.On("GetComic", ctx, int64(7)).Return(found(remoteComic(7, "978-7")), nil).Twice()
		mComics.On("Save", ctx, mock.Anything, mock.Anything).Return(nil).Twice()

		stored, err := s.Enrich(ctx, []int64{7, 7})
		require.NoError(t, err)
		assert.Len(t, stored, 2)
		mFetch.AssertExpectations(t)
	})

	t.Run("transport error aborts the batch", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mComics := new(mockComicRepo)
		s := NewService(mFetch, mComics, new(mockAttacher), new(mockRunRepo))

		mFetch.On("GetComic", ctx, int64(1)).Return(found(remoteComic(1, "978-1")), nil)
		mFetch.On("GetComic", ctx, int64(2)).Return(nil, &marvel.TransportError{URL: "x", Err: errors.New("dial tcp: refused")})
		mComics.On("Save", ctx, mock.Anything, mock.Anything).Return(nil).Once()

		stored, err := s.Enrich(ctx, []int64{1, 2, 3})
		require.Error(t, err)
		assert.ErrorIs(t, err, marvel.ErrTransport)
		assert.Len(t, stored, 1)
		mFetch.AssertNotCalled(t, "GetComic", ctx, int64(3))
		mComics.AssertExpectations(t)
	})

	t.Run("incomplete remote comic fails validation", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mComics := new(mockComicRepo)
		s := NewService(mFetch, mComics, new(mockAttacher), new(mockRunRepo))

		rc := remoteComic(1, "978-1")
		rc.Prices = nil
		mFetch.On("GetComic", ctx, int64(1)).Return(found(rc), nil)

		_, err := s.Enrich(ctx, []int64{1})
		require.Error(t, err)
		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "price")
		mComics.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store conflict aborts", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mComics := new(mockComicRepo)
		s := NewService(mFetch, mComics, new(mockAttacher), new(mockRunRepo))

		mFetch.On("GetComic", ctx, int64(1)).Return(found(remoteComic(1, "978-1")), nil)
		mComics.On("Save", ctx, mock.Anything, mock.Anything).Return(comic.ErrAlreadyExists)

		_, err := s.Enrich(ctx, []int64{1, 2})
		assert.ErrorIs(t, err, comic.ErrAlreadyExists)
		mFetch.AssertNotCalled(t, "GetComic", ctx, int64(2))
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches stored comics and closes the run", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mComics := new(mockComicRepo)
		mPeople := new(mockAttacher)
		mRuns := new(mockRunRepo)
		s := NewService(mFetch, mComics, mPeople, mRuns)

		mRuns.On("CreateRun", ctx, mock.MatchedBy(func(r *Run) bool {
			return r.PersonID == 5 && r.Requested == 3 && r.Status == StatusRunning
		})).Return("run-1", nil)
		mFetch.On("GetComic", ctx, int64(1)).Return(found(remoteComic(1, "978-1")), nil)
		mFetch.On("GetComic", ctx, int64(2)).Return(notFound(), nil)
		mFetch.On("GetComic", ctx, int64(3)).Return(found(remoteComic(3, "978-3")), nil)
		mComics.On("Save", ctx, mock.Anything, mock.Anything).Return(nil).Twice()
		mRuns.On("LinkComicToRun", ctx, "run-1", mock.Anything).Return(nil).Twice()
		mPeople.On("AttachComics", ctx, int64(5), []int64{1, 3}).Return(nil)
		mRuns.On("UpdateRun", mock.Anything, mock.MatchedBy(func(r *Run) bool {
			return r.Status == StatusCompleted && r.Fetched == 2 && r.Skipped == 1 && r.Stored == 2 && r.FinishedAt != nil
		})).Return(nil)

		res, err := s.Update(ctx, UpdateRequest{PersonID: 5, ComicIDs: []int64{1, 2, 3}})
		require.NoError(t, err)
		assert.Equal(t, "run-1", res.RunID)
		assert.Len(t, res.Comics, 2)

		mFetch.AssertExpectations(t)
		mComics.AssertExpectations(t)
		mPeople.AssertExpectations(t)
		mRuns.AssertExpectations(t)
	})

	t.Run("nothing stored skips association", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mPeople := new(mockAttacher)
		mRuns := new(mockRunRepo)
		s := NewService(mFetch, new(mockComicRepo), mPeople, mRuns)

		mRuns.On("CreateRun", ctx, mock.Anything).Return("run-2", nil)
		mFetch.On("GetComic", ctx, int64(9)).Return(empty(), nil)
		mRuns.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)

		res, err := s.Update(ctx, UpdateRequest{PersonID: 5, ComicIDs: []int64{9}})
		require.NoError(t, err)
		assert.Empty(t, res.Comics)
		mPeople.AssertNotCalled(t, "AttachComics", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown person marks the run failed", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mComics := new(mockComicRepo)
		mPeople := new(mockAttacher)
		mRuns := new(mockRunRepo)
		s := NewService(mFetch, mComics, mPeople, mRuns)

		mRuns.On("CreateRun", ctx, mock.Anything).Return("run-3", nil)
		mFetch.On("GetComic", ctx, int64(1)).Return(found(remoteComic(1, "978-1")), nil)
		mComics.On("Save", ctx, mock.Anything, mock.Anything).Return(nil)
		mRuns.On("LinkComicToRun", ctx, "run-3", int64(1)).Return(nil)
		mPeople.On("AttachComics", ctx, int64(404), []int64{1}).Return(person.ErrNotFound)
		mRuns.On("UpdateRun", mock.Anything, mock.MatchedBy(func(r *Run) bool {
			return r.Status == StatusFailed && r.Error == person.ErrNotFound.Error()
		})).Return(nil)

		_, err := s.Update(ctx, UpdateRequest{PersonID: 404, ComicIDs: []int64{1}})
		assert.ErrorIs(t, err, person.ErrNotFound)
		mRuns.AssertExpectations(t)
	})

	t.Run("run log failure does not change the outcome", func(t *testing.T) {
		mFetch := new(mockFetcher)
		mComics := new(mockComicRepo)
		mPeople := new(mockAttacher)
		mRuns := new(mockRunRepo)
		s := NewService(mFetch, mComics, mPeople, mRuns)

		mRuns.On("CreateRun", ctx, mock.Anything).Return("", errors.New("db down"))
		mFetch.On("GetComic", ctx, int64(1)).Return(found(remoteComic(1, "978-1")), nil)
		mComics.On("Save", ctx, mock.Anything, mock.Anything).Return(nil)
		mPeople.On("AttachComics", ctx, int64(5), []int64{1}).Return(nil)

		res, err := s.Update(ctx, UpdateRequest{PersonID: 5, ComicIDs: []int64{1}})
		require.NoError(t, err)
		assert.Empty(t, res.RunID)
		mRuns.AssertNotCalled(t, "UpdateRun", mock.Anything, mock.Anything)
		mRuns.AssertNotCalled(t, "LinkComicToRun", mock.Anything, mock.Anything, mock.Anything)
	})
}
