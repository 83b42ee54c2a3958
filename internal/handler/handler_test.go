package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yourorg/simulation-service/internal/model"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", model.NewNotFoundError("backtest", "b1"), http.StatusNotFound},
		{"configuration", model.NewConfigurationError("bad timeframe"), http.StatusBadRequest},
		{"invalid order", model.NewInvalidOrderError("quantity must be positive"), http.StatusBadRequest},
		{"data", model.NewDataError("no bars"), http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, statusForError(tc.err))
		})
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	respondError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "connection refused")

	recorder = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(recorder)
	respondError(c, model.NewInvalidOrderError("quantity must be positive, got %v", -1.0))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "quantity must be positive")
}
