package comic

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("comic not found")
	ErrAlreadyExists = errors.New("comic with this isbn already exists")
)

// Comic is the local record of a remote comic. ID is the gateway id.
type Comic struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Price       *decimal.Decimal `json:"price"`
	Authors     string           `json:"authors"`
	Description string           `json:"description"`
	ISBN        string           `json:"isbn"`
	UpdatedAt   time.Time        `json:"-"`
}

// Validate reports every missing field the store requires.
func (c Comic) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Price, validation.NotNil),
		validation.Field(&c.Authors, validation.Required),
		validation.Field(&c.Description, validation.Required),
		validation.Field(&c.ISBN, validation.Required),
	)
}

// Response is what a person sees for one of their comics.
type Response struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Authors     string           `json:"authors"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	HasDiscount bool             `json:"hasDiscount"`
}

func ToResponse(c Comic, hasDiscount bool) Response {
	return Response{
		ID:          c.ID,
		Title:       c.Title,
		Authors:     c.Authors,
		Description: c.Description,
		Price:       c.Price,
		HasDiscount: hasDiscount,
	}
}
