package person

import (
	"errors"
	"net/http"

	"marvelous/internal/httpx"

	"github.com/rs/zerolog/log"
)

func init() {
	_ = httpx.RegisterStringValidation("cpf", ValidCPF)
}

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type registerReq struct {
	CPF      string `json:"cpf" validate:"required,cpf"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Birthday string `json:"birthday" validate:"required,date_br"`
}

// List handles GET /users
// @Summary List people
// @Description List every registered person with their comics
// @Tags users
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /users [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	people, err := h.svc.List(r.Context())
	if err != nil {
		log.Error().Err(err).Str("request_id", httpx.RequestIDFrom(r)).Msg("list people")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if people == nil {
		people = []Person{}
	}
	httpx.JSONSuccess(w, r, people, map[string]any{"total": len(people)})
}

// Create handles POST /users
// @Summary Register a person
// @Tags users
// @Accept json
// @Produce json
// @Param body body registerReq true "Person"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /users [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid person", details)
		return
	}

	birthday, err := ParseDate(req.Birthday)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid person",
			[]httpx.ErrorDetail{{Field: "birthday", Message: err.Error()}})
		return
	}

	id, err := h.svc.Register(r.Context(), Person{
		CPF:      req.CPF,
		Name:     req.Name,
		Email:    req.Email,
		Birthday: birthday,
	})
	if err != nil {
		if details, ok := httpx.ValidationDetails(err); ok {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid person", details)
			return
		}
		if errors.Is(err, ErrAlreadyExists) {
			httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", err.Error(), nil)
			return
		}
		log.Error().Err(err).Str("request_id", httpx.RequestIDFrom(r)).Msg("register person")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, r, map[string]int64{"id": id})
}
