package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteJSON(rec, http.StatusCreated, map[string]int64{"id": 1}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())
}

func TestGeneralError(t *testing.T) {
	resp := GeneralError(errors.New("db is down"))

	assert.Equal(t, Response{Status: StatusError, Error: "db is down"}, resp)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
		Age   int    `validate:"min=18"`
	}

	err := validator.New().Struct(payload{Email: "nope", Age: 3})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	resp := ValidationError(verrs)

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t,
		"field Name is required, field Email must be a valid email address, field Age is invalid",
		resp.Error)
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, http.StatusNotFound, errors.New("student not found with id: 7"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"error","error":"student not found with id: 7"}`, rec.Body.String())
}

func TestInvalid(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}

	err := validator.New().Struct(payload{Email: "nope"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	rec := httptest.NewRecorder()
	Invalid(rec, verrs)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"field Email must be a valid email address"}`, rec.Body.String())
}
