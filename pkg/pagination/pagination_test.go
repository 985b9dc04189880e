package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/skillora/skillora-server/pkg/pagination"
)

func extract(t *testing.T, query string) pagination.Params {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return pagination.Extract(c)
}

func TestExtractDefaults(t *testing.T) {
	params := extract(t, "")
	assert.False(t, params.Requested)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, pagination.DefaultLimit, params.Limit)
	assert.Equal(t, 0, params.Skip)
}

func TestExtractRequested(t *testing.T) {
	params := extract(t, "page=3&limit=10")
	assert.True(t, params.Requested)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, 20, params.Skip)
}

func TestExtractClampsBadValues(t *testing.T) {
	params := extract(t, "page=-1&limit=9999")
	assert.True(t, params.Requested)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, pagination.MaxLimit, params.Limit)
}

func TestMetadataFrom(t *testing.T) {
	meta := pagination.MetadataFrom(45, pagination.Params{Page: 2, Limit: 10})
	assert.EqualValues(t, 45, meta.TotalItems)
	assert.Equal(t, 5, meta.TotalPages)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)

	last := pagination.MetadataFrom(45, pagination.Params{Page: 5, Limit: 10})
	assert.False(t, last.HasNextPage)
}
