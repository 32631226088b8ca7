package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"autolot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBody(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{models.ErrCarNotFound, http.StatusNotFound},
		{models.ErrOrderNotFound, http.StatusNotFound},
		{models.ErrUserNotFound, http.StatusNotFound},
		{models.ErrCarUnavailable, http.StatusConflict},
		{models.ErrInvalidTransition, http.StatusConflict},
		{models.ErrCarReserved, http.StatusConflict},
		{models.ErrDuplicateUser, http.StatusConflict},
		{models.ErrAdminProtected, http.StatusConflict},
		{models.ErrInvalidCredentials, http.StatusUnauthorized},
		{models.ErrAccessDenied, http.StatusForbidden},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		status := writeServiceError(rec, tc.err)
		assert.Equal(t, tc.status, status, "error %v", tc.err)
		assert.Equal(t, tc.status, rec.Code)
	}
}

func TestWriteServiceErrorMasksInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New("pq: password authentication failed for user postgres"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, rec.Body.String(), "postgres")
}

func TestWriteServiceErrorValidationIncludesFields(t *testing.T) {
	verr := &models.ValidationError{}
	verr.Add("email", "please enter a valid email address")
	verr.Add("phone", "please enter a valid phone number")

	rec := httptest.NewRecorder()
	status := writeServiceError(rec, verr)
	assert.Equal(t, http.StatusBadRequest, status)

	var body struct {
		Error  string              `json:"error"`
		Fields []models.FieldError `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Fields, 2)
	assert.Equal(t, "email", body.Fields[0].Field)
}

func TestParseRequestBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Body = http.NoBody
	var target struct{}
	assert.Error(t, parseRequestBody(r, &target))

	r = httptest.NewRequest(http.MethodPost, "/",
		newBody(`{"known": 1, "mystery": true}`))
	var known struct {
		Known int `json:"known"`
	}
	assert.Error(t, parseRequestBody(r, &known))
}

func TestParsePage(t *testing.T) {
	cases := map[string]int{
		"/cars":          1,
		"/cars?page=3":   3,
		"/cars?page=0":   1,
		"/cars?page=-2":  1,
		"/cars?page=abc": 1,
	}
	for url, want := range cases {
		r := httptest.NewRequest(http.MethodGet, url, nil)
		assert.Equal(t, want, parsePage(r), "url %s", url)
	}
}
