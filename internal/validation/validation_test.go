package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/adboard/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingPayload struct {
	ID      int64   `param:"id" json:"-"`
	Title   *string `json:"title" validate:"required,max=10"`
	Summary *string `json:"summary" validate:"omitnil,min=5"`
	Score   *int    `json:"score" validate:"omitnil,inrange=1~5"`
	Count   *int    `json:"count" validate:"omitnil,max=3"`
}

func (p *listingPayload) Validate() error {
	return Struct(p)
}

func bind(t *testing.T, body string, id string) (*listingPayload, *errs.HTTPError) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/listing/"+id, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(id)

	payload := &listingPayload{}
	err := BindAndValidate(c, payload)
	if err == nil {
		return payload, nil
	}

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "got %T", err)
	return payload, httpErr
}

func TestBindAndValidate_Valid(t *testing.T) {
	payload, httpErr := bind(t, `{"title":"Bike","score":5}`, "42")
	require.Nil(t, httpErr)

	assert.Equal(t, int64(42), payload.ID)
	assert.Equal(t, "Bike", *payload.Title)
	assert.Equal(t, 5, *payload.Score)
	assert.Nil(t, payload.Summary)
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []errs.FieldError
	}{
		{
			name: "required",
			body: `{}`,
			want: []errs.FieldError{{Field: "title", Error: "is required"}},
		},
		{
			name: "string max and min",
			body: `{"title":"A very long title","summary":"abc"}`,
			want: []errs.FieldError{
				{Field: "title", Error: "must be less than 10"},
				{Field: "summary", Error: "must be more than 5"},
			},
		},
		{
			name: "range",
			body: `{"title":"ok","score":0}`,
			want: []errs.FieldError{{Field: "score", Error: "must be in range 1 to 5"}},
		},
		{
			name: "numeric max",
			body: `{"title":"ok","count":4}`,
			want: []errs.FieldError{{Field: "count", Error: "must not exceed 3"}},
		},
		{
			name: "type mismatch",
			body: `{"title":7}`,
			want: []errs.FieldError{{Field: "title", Error: "must be a string"}},
		},
		{
			name: "integer expected",
			body: `{"title":"ok","score":"high"}`,
			want: []errs.FieldError{{Field: "score", Error: "must be an integer"}},
		},
		{
			name: "type errors do not hide rule errors",
			body: `{"title":["x"],"summary":"abc","score":"high","count":9}`,
			want: []errs.FieldError{
				{Field: "title", Error: "must be a string"},
				{Field: "summary", Error: "must be more than 5"},
				{Field: "score", Error: "must be an integer"},
				{Field: "count", Error: "must not exceed 3"},
			},
		},
		{
			name: "fractional number for integer",
			body: `{"title":"ok","count":1.5}`,
			want: []errs.FieldError{{Field: "count", Error: "must be an integer"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, httpErr := bind(t, tt.body, "1")
			require.NotNil(t, httpErr)

			assert.Equal(t, http.StatusBadRequest, httpErr.Status)
			assert.Equal(t, tt.want, httpErr.Errors)
		})
	}
}

func TestBindAndValidate_Malformed(t *testing.T) {
	for _, body := range []string{`{"title":`, `{"title" "x"}`} {
		_, httpErr := bind(t, body, "1")
		require.NotNil(t, httpErr, body)
		assert.Equal(t, "Request body is not valid JSON", httpErr.Message, body)
		assert.Empty(t, httpErr.Errors)
	}
}

func TestBindAndValidate_NotAnObject(t *testing.T) {
	_, httpErr := bind(t, `["title"]`, "1")
	require.NotNil(t, httpErr)
	assert.Equal(t, "Request body must be a JSON object", httpErr.Message)
}

func TestBindAndValidate_KeyCaseInsensitive(t *testing.T) {
	payload, httpErr := bind(t, `{"Title":"Bike"}`, "1")
	require.Nil(t, httpErr)
	assert.Equal(t, "Bike", *payload.Title)
}

func TestBindAndValidate_BadPathParam(t *testing.T) {
	_, httpErr := bind(t, `{"title":"ok"}`, "abc")
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, `Invalid parameter "abc": must be an integer`, httpErr.Message)
}

func TestCustomValidationErrors(t *testing.T) {
	msg, fieldErrors := extractValidationError(CustomValidationErrors{
		{Field: "owner_id", Message: "must reference an existing user"},
	})
	assert.Equal(t, "Validation failed", msg)
	assert.Equal(t, []errs.FieldError{{Field: "owner_id", Error: "must reference an existing user"}}, fieldErrors)
}

func TestParseRange(t *testing.T) {
	lo, hi, ok := parseRange("0~100")
	require.True(t, ok)
	assert.Equal(t, int64(0), lo)
	assert.Equal(t, int64(100), hi)

	_, _, ok = parseRange("100")
	assert.False(t, ok)

	_, _, ok = parseRange("a~b")
	assert.False(t, ok)
}
