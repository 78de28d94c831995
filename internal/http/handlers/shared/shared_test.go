package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPageQueryClampsValues(t *testing.T) {
	c, _ := newTestContext("/orders?page=-3&page_size=500")
	page, size := PageQuery(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, maxPageSize, size)

	c, _ = newTestContext("/orders?page=3&page_size=abc")
	page, size = PageQuery(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, defaultPageSize, size)
}

func TestParseTimeNullableLayouts(t *testing.T) {
	for _, raw := range []string{"2026-03-01T10:00:00Z", "2026-03-01 10:00:00", "2026-03-01"} {
		got, err := ParseTimeNullable(raw)
		require.NoError(t, err, raw)
		require.NotNil(t, got)
		assert.Equal(t, 2026, got.Year())
	}
	got, err := ParseTimeNullable("  ")
	assert.NoError(t, err)
	assert.Nil(t, got)
	_, err = ParseTimeNullable("yesterday")
	assert.Error(t, err)
}

func TestRequireContextID(t *testing.T) {
	c, w := newTestContext("/me")
	_, ok := RequireContextID(c, "user_id")
	assert.False(t, ok)
	assert.Equal(t, response.CodeUnauthorized, decodeEnvelope(t, w).StatusCode)

	c, w = newTestContext("/me")
	c.Set("user_id", "7")
	_, ok = RequireContextID(c, "user_id")
	assert.False(t, ok)
	assert.Equal(t, response.CodeInternal, decodeEnvelope(t, w).StatusCode)

	c, _ = newTestContext("/me")
	c.Set("user_id", uint(7))
	id, ok := RequireContextID(c, "user_id")
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
}

func TestRespondMappedErrorUsesFirstMatchingRule(t *testing.T) {
	c, w := newTestContext("/orders")
	wrapped := fmt.Errorf("checkout: %w", service.ErrCODLimitExceeded)
	RespondMappedError(c, wrapped, CheckoutErrorRules, response.CodeInternal, "error.internal")

	resp := decodeEnvelope(t, w)
	assert.Equal(t, response.CodeBadRequest, resp.StatusCode)
	assert.Equal(t, "error.cod_limit_exceeded", resp.ErrorKey)

	c, w = newTestContext("/orders")
	RespondMappedError(c, errors.New("boom"), CheckoutErrorRules, response.CodeInternal, "error.internal")
	assert.Equal(t, response.CodeInternal, decodeEnvelope(t, w).StatusCode)
}
