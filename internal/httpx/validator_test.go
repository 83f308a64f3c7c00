package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Birthday string  `json:"birthday" validate:"required,date_br"`
	IDs      []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

func TestValidateStruct_Valid(t *testing.T) {
	s := sampleRequest{Email: "a@b.com", Birthday: "31/12/1990", IDs: []int64{1}}
	assert.Empty(t, ValidateStruct(s))
}

func TestValidateStruct_Errors(t *testing.T) {
	tests := []struct {
		name      string
		req       sampleRequest
		wantField string
		wantMsg   string
	}{
		{"missing email", sampleRequest{Birthday: "01/01/2000", IDs: []int64{1}}, "email", "required"},
		{"bad email", sampleRequest{Email: "nope", Birthday: "01/01/2000", IDs: []int64{1}}, "email", "valid email"},
		{"us date", sampleRequest{Email: "a@b.com", Birthday: "12/31/1990", IDs: []int64{1}}, "birthday", "dd/MM/yyyy"},
		{"iso date", sampleRequest{Email: "a@b.com", Birthday: "1990-12-31", IDs: []int64{1}}, "birthday", "dd/MM/yyyy"},
		{"no ids", sampleRequest{Email: "a@b.com", Birthday: "01/01/2000", IDs: []int64{}}, "ids", "at least"},
		{"zero id", sampleRequest{Email: "a@b.com", Birthday: "01/01/2000", IDs: []int64{0}}, "ids[0]", "greater than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := ValidateStruct(tt.req)
			require.Len(t, details, 1)
			assert.Equal(t, tt.wantField, details[0].Field)
			assert.Contains(t, details[0].Message, tt.wantMsg)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	assert.Error(t, DecodeJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
	assert.Error(t, DecodeJSON(r, &dst))
}

func TestRegisterStringValidation(t *testing.T) {
	require.NoError(t, RegisterStringValidation("even_len", func(s string) bool { return len(s)%2 == 0 }))

	type req struct {
		Code string `json:"code" validate:"even_len"`
	}
	assert.Empty(t, ValidateStruct(req{Code: "ab"}))
	details := ValidateStruct(req{Code: "abc"})
	require.Len(t, details, 1)
	assert.Equal(t, "code", details[0].Field)
}
