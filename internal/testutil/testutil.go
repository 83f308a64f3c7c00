package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"marvelous/internal/comic"
	"marvelous/internal/person"

	"github.com/shopspring/decimal"
)

// ValidCPF passes the check-digit test.
const ValidCPF = "529.982.247-25"

// TestPerson returns a registrable person with no comics.
func TestPerson() person.Person {
	return person.Person{
		CPF:      ValidCPF,
		Name:     "Peter Parker",
		Email:    "peter@dailybugle.com",
		Birthday: person.Date{Time: time.Date(2001, time.August, 10, 0, 0, 0, 0, time.UTC)},
		Comics:   []comic.Comic{},
	}
}

// TestComic returns a complete comic whose ISBN ends in digit.
func TestComic(id int64, digit byte) comic.Comic {
	price := decimal.RequireFromString("3.99")
	return comic.Comic{
		ID:          id,
		Title:       "Amazing Fantasy #15",
		Price:       &price,
		Authors:     "Stan Lee, Steve Ditko",
		Description: "The first appearance of Spider-Man.",
		ISBN:        "978-0-7851-000" + string(digit),
	}
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body any) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// RecordResponse is a decoded JSON envelope.
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// RecordHTTPResponse decodes the recorded response body.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// ErrorCode returns error.code from an error envelope, or "".
func (r RecordResponse) ErrorCode() string {
	e, _ := r.Body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

// Data returns the envelope's data field.
func (r RecordResponse) Data() any {
	return r.Body["data"]
}
