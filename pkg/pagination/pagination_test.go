package pagination

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name           string
		queryString    string
		expectedLimit  int
		expectedOffset int
	}{
		{"no params uses defaults", "", DefaultLimit, DefaultOffset},
		{"valid limit and offset", "limit=10&offset=20", 10, 20},
		{"zero limit uses default", "limit=0", DefaultLimit, DefaultOffset},
		{"negative limit uses default", "limit=-10", DefaultLimit, DefaultOffset},
		{"limit exceeds max", "limit=200", MaxLimit, DefaultOffset},
		{"negative offset uses default", "offset=-10", DefaultLimit, DefaultOffset},
		{"non-numeric values", "limit=abc&offset=xyz", DefaultLimit, DefaultOffset},
		{"float limit", "limit=10.5", DefaultLimit, DefaultOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/me/cars?"+tt.queryString, nil)

			params := ParseParams(c)

			assert.Equal(t, tt.expectedLimit, params.Limit)
			assert.Equal(t, tt.expectedOffset, params.Offset)
		})
	}
}

func TestBuildMeta(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		total      int64
		totalPages int
	}{
		{"partial last page", 10, 0, 25, 3},
		{"exact pages", 20, 0, 100, 5},
		{"no items", 10, 0, 0, 0},
		{"zero limit", 0, 0, 100, 0},
		{"limit greater than total", 50, 0, 10, 1},
		{"negative values do not panic", -10, -20, -100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := BuildMeta(tt.limit, tt.offset, tt.total)
			assert.Equal(t, tt.limit, meta.Limit)
			assert.Equal(t, tt.offset, meta.Offset)
			assert.Equal(t, tt.total, meta.Total)
			assert.Equal(t, tt.totalPages, meta.TotalPages)
		})
	}
}

func TestHasMoreAndCurrentPage(t *testing.T) {
	assert.True(t, HasMore(0, 10, 100))
	assert.True(t, HasMore(89, 10, 100))
	assert.False(t, HasMore(90, 10, 100))
	assert.False(t, HasMore(0, 10, 0))

	assert.Equal(t, 1, GetCurrentPage(0, 10))
	assert.Equal(t, 2, GetCurrentPage(15, 10))
	assert.Equal(t, 3, GetCurrentPage(50, 25))
	assert.Equal(t, 1, GetCurrentPage(10, 0))
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		expectedPage int
		expectedSize int
		offset       int
	}{
		{"defaults", 0, 0, 1, 20, 0},
		{"second page", 2, 20, 2, 20, 20},
		{"negative page", -3, 10, 1, 10, 0},
		{"size above max", 3, 500, 3, 100, 200},
		{"size of one", 5, 1, 5, 1, 4},
		{"huge page", math.MaxInt, 20, math.MaxInt / 20, 20, (math.MaxInt/20 - 1) * 20},
		{"huge page of one", math.MaxInt, 1, math.MaxInt, 1, math.MaxInt - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NormalizePage(tt.page, tt.size, 20, 100)
			assert.Equal(t, tt.expectedPage, p.Number)
			assert.Equal(t, tt.expectedSize, p.Size)
			assert.Equal(t, tt.offset, p.Offset())
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(1, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 0, TotalPages(10, 0))
}
