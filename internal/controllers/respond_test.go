package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_tracker/internal/services"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[services.Kind]int{
		services.KindValidation:      http.StatusBadRequest,
		services.KindInvariant:       http.StatusBadRequest,
		services.KindUnauthenticated: http.StatusUnauthorized,
		services.KindForbidden:       http.StatusForbidden,
		services.KindNotFound:        http.StatusNotFound,
		services.KindConflict:        http.StatusConflict,
		services.KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, httpStatus(kind), "kind %d", kind)
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err      error
		wantCode int
		wantBody string
	}{
		{services.ErrTripNotFound, http.StatusNotFound, "TRIP_NOT_FOUND"},
		{fmt.Errorf("book: %w", services.ErrSeatAlreadyBooked), http.StatusConflict, "SEAT_ALREADY_BOOKED"},
		{services.Invalid("fare is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, tc.err)

		assert.Equal(t, tc.wantCode, w.Code, tc.err.Error())
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.wantBody, body["code"])
	}
}
