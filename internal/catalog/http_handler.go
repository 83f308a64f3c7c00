package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"marvelous/internal/comic"
	"marvelous/internal/httpx"

	"github.com/rs/zerolog/log"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// ComicsByPerson handles GET /users/{id}/comics
// @Summary List a person's comics
// @Description Comics attached to the person, flagged with today's discount
// @Tags users
// @Produce json
// @Param id path int true "Person id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /users/{id}/comics [get]
func (h *HTTPHandler) ComicsByPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	comics, err := h.svc.ComicsByPerson(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("person_id", id).Msg("comics by person")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, comics, map[string]any{"total": len(comics)})
}

// ComicByID handles GET /comics/{id}
// @Summary Get a stored comic
// @Tags comics
// @Produce json
// @Param id path int true "Comic id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /comics/{id} [get]
func (h *HTTPHandler) ComicByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.ComicByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, comic.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Comic not found", nil)
			return
		}
		log.Error().Err(err).Int64("comic_id", id).Msg("comic by id")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, c, nil)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}
