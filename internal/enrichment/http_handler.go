package enrichment

import (
	"errors"
	"net/http"

	"marvelous/internal/comic"
	"marvelous/internal/httpx"
	"marvelous/internal/person"
	"marvelous/internal/platform/marvel"

	"github.com/rs/zerolog/log"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Update handles POST /users/update
// @Summary Enrich comics and attach them to a person
// @Description Fetch each comic id from the Marvel gateway, store it and add it to the person's list
// @Tags users
// @Accept json
// @Produce json
// @Param body body UpdateRequest true "Person and comic ids"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /users/update [post]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid update request", details)
		return
	}

	result, err := h.svc.Update(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, result, map[string]any{"stored": len(result.Comics)})
}

// GetRun handles GET /enrichment/runs/{id}
// @Summary Get an enrichment run
// @Tags enrichment
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /enrichment/runs/{id} [get]
func (h *HTTPHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "run id is required", nil)
		return
	}

	run, err := h.svc.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
			return
		}
		log.Error().Err(err).Str("run_id", id).Msg("get enrichment run")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if details, ok := httpx.ValidationDetails(err); ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), details)
		return
	}
	switch {
	case errors.Is(err, marvel.ErrTransport):
		httpx.JSONError(w, r, http.StatusBadGateway, "REMOTE_UNAVAILABLE", "comic gateway unavailable", nil)
	case errors.Is(err, person.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, comic.ErrAlreadyExists):
		httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", err.Error(), nil)
	default:
		log.Error().Err(err).Str("request_id", httpx.RequestIDFrom(r)).Msg("enrichment update")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
