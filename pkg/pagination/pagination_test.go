package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/"+query, nil)
	return c
}

func TestParsePageParams_Defaults(t *testing.T) {
	params := ParsePageParams(newContext(""))
	assert.Equal(t, DefaultPage, params.Page)
	assert.Equal(t, DefaultLimit, params.Limit)
}

func TestParsePageParams_Explicit(t *testing.T) {
	params := ParsePageParams(newContext("?page=3&limit=25"))
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 25, params.Limit)
	assert.Equal(t, 50, params.GetOffset())
}

func TestParsePageParams_InvalidFallsBackToDefaults(t *testing.T) {
	cases := []string{
		"?page=abc&limit=xyz",
		"?page=0&limit=0",
		"?page=-1&limit=-5",
	}
	for _, query := range cases {
		params := ParsePageParams(newContext(query))
		assert.Equal(t, DefaultPage, params.Page, query)
		assert.Equal(t, DefaultLimit, params.Limit, query)
	}
}

func TestParsePageParams_LimitCapped(t *testing.T) {
	params := ParsePageParams(newContext("?limit=1000"))
	assert.Equal(t, MaxLimit, params.Limit)
}

func TestNewPageInfo(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		limit      int
		total      int64
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{"空结果", 1, 10, 0, 0, false, false},
		{"单页", 1, 10, 5, 1, false, false},
		{"首页有下一页", 1, 10, 25, 3, true, false},
		{"中间页", 2, 10, 25, 3, true, true},
		{"末页", 3, 10, 25, 3, false, true},
		{"整除边界", 2, 10, 20, 2, false, true},
	}

	for _, tc := range cases {
		info := NewPageInfo(tc.page, tc.limit, tc.total)
		assert.Equal(t, tc.totalPages, info.TotalPages, tc.name)
		assert.Equal(t, tc.hasNext, info.HasNext, tc.name)
		assert.Equal(t, tc.hasPrev, info.HasPrev, tc.name)
		assert.Equal(t, tc.total, info.Total, tc.name)
	}
}
