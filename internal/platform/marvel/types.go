package marvel

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// StatusOK is the envelope code the gateway uses for a successful lookup.
const StatusOK = "200"

// Code is the envelope status. The gateway sends numbers for HTTP-like
// codes (200, 404) and strings for auth failures ("InvalidCredentials").
type Code string

func (c *Code) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = Code(n.String())
	return nil
}

func (c Code) MarshalJSON() ([]byte, error) {
	if n, err := strconv.Atoi(string(c)); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(c))
}

// Response is the wrapper every /v1/public endpoint returns.
type Response[T any] struct {
	Code   Code    `json:"code"`
	Status string  `json:"status,omitempty"`
	Data   Data[T] `json:"data"`
}

type Data[T any] struct {
	Offset  int64 `json:"offset"`
	Limit   int64 `json:"limit"`
	Total   int64 `json:"total"`
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}

// Single returns the only result of a successful lookup. Any other code or
// result count means there is nothing usable and ok is false.
func (r *Response[T]) Single() (item T, ok bool) {
	if r == nil || r.Code != StatusOK {
		return item, false
	}
	if r.Data.Count != 1 || len(r.Data.Results) == 0 {
		return item, false
	}
	return r.Data.Results[0], true
}

// Comic matches the comic resource of /v1/public/comics.
type Comic struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Prices      []Price     `json:"prices"`
	Creators    CreatorList `json:"creators"`
	Description string      `json:"description"`
	ISBN        string      `json:"isbn"`
}

type Price struct {
	Type  string          `json:"type"`
	Price decimal.Decimal `json:"price"`
}

type CreatorList struct {
	Available *int64           `json:"available"`
	Items     []CreatorSummary `json:"items"`
}

type CreatorSummary struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}
