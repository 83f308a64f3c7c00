package enrichment

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marvelous/internal/comic"
	"marvelous/internal/person"
	"marvelous/internal/platform/marvel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type handlerDeps struct {
	fetch  *mockFetcher
	comics *mockComicRepo
	people *mockAttacher
	runs   *mockRunRepo
}

func newTestHandler() (*HTTPHandler, handlerDeps) {
	d := handlerDeps{
		fetch:  new(mockFetcher),
		comics: new(mockComicRepo),
		people: new(mockAttacher),
		runs:   new(mockRunRepo),
	}
	d.runs.On("CreateRun", mock.Anything, mock.Anything).Return("run-1", nil)
	d.runs.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)
	d.runs.On("LinkComicToRun", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return NewHTTPHandler(NewService(d.fetch, d.comics, d.people, d.runs)), d
}

func postUpdate(h *HTTPHandler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.Update(w, httptest.NewRequest(http.MethodPost, "/users/update", strings.NewReader(body)))
	return w
}

func TestHTTPHandler_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h, d := newTestHandler()
		d.fetch.On("GetComic", mock.Anything, int64(1)).Return(found(remoteComic(1, "978-1")), nil)
		d.comics.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		d.people.On("AttachComics", mock.Anything, int64(5), []int64{1}).Return(nil)

		w := postUpdate(h, `{"personId":5,"comicIds":[1]}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"runId":"run-1"`)
		assert.Contains(t, w.Body.String(), `"authors":"Stan Lee, Steve Ditko"`)
	})

	t.Run("invalid body", func(t *testing.T) {
		h, _ := newTestHandler()

		w := postUpdate(h, `{"personId":0,"comicIds":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"personId"`)
		assert.Contains(t, w.Body.String(), `"field":"comicIds"`)
	})

	t.Run("malformed json", func(t *testing.T) {
		h, _ := newTestHandler()
		w := postUpdate(h, `[1,2]`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("gateway down", func(t *testing.T) {
		h, d := newTestHandler()
		d.fetch.On("GetComic", mock.Anything, int64(1)).Return(nil, &marvel.TransportError{URL: "x", Err: errors.New("timeout")})

		w := postUpdate(h, `{"personId":5,"comicIds":[1]}`)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "REMOTE_UNAVAILABLE")
	})

	t.Run("unknown person", func(t *testing.T) {
		h, d := newTestHandler()
		d.fetch.On("GetComic", mock.Anything, int64(1)).Return(found(remoteComic(1, "978-1")), nil)
		d.comics.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		d.people.On("AttachComics", mock.Anything, int64(9), []int64{1}).Return(person.ErrNotFound)

		w := postUpdate(h, `{"personId":9,"comicIds":[1]}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("isbn conflict", func(t *testing.T) {
		h, d := newTestHandler()
		d.fetch.On("GetComic", mock.Anything, int64(1)).Return(found(remoteComic(1, "978-1")), nil)
		d.comics.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(comic.ErrAlreadyExists)

		w := postUpdate(h, `{"personId":5,"comicIds":[1]}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ALREADY_EXISTS")
	})

	t.Run("incomplete remote comic", func(t *testing.T) {
		h, d := newTestHandler()
		rc := remoteComic(1, "978-1")
		rc.ISBN = ""
		d.fetch.On("GetComic", mock.Anything, int64(1)).Return(found(rc), nil)

		w := postUpdate(h, `{"personId":5,"comicIds":[1]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"isbn"`)
	})
}

func TestHTTPHandler_GetRun(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		h, d := newTestHandler()
		d.runs.On("FindRun", mock.Anything, "run-1").Return(Run{ID: "run-1", Status: StatusCompleted, Stored: 2}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/enrichment/runs/run-1", nil)
		r.SetPathValue("id", "run-1")
		h.GetRun(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"stored":2`)
	})

	t.Run("missing", func(t *testing.T) {
		h, d := newTestHandler()
		d.runs.On("FindRun", mock.Anything, "nope").Return(Run{}, ErrRunNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/enrichment/runs/nope", nil)
		r.SetPathValue("id", "nope")
		h.GetRun(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
