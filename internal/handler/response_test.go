package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/driano7/Xoco-POS-sub003/pkg/errors"
)

func respondWith(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	Error(c, err)
	return rec
}

func TestErrorMapsAppErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", apperrors.BadRequest("invalid branch id", nil), http.StatusBadRequest},
		{"not found", apperrors.NotFound("order", nil), http.StatusNotFound},
		{"conflict", apperrors.Conflict("account already exists", nil), http.StatusConflict},
		{"unavailable", apperrors.Unavailable("remote store down", nil), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, respondWith(tt.err).Code)
		})
	}
}

func TestErrorDefaultsToInternal(t *testing.T) {
	rec := respondWith(errors.New("failed to enqueue pending record"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestErrorUnwrapsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("failed to create order: %w", apperrors.BadRequest("invalid branch id", nil))
	rec := respondWith(wrapped)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
