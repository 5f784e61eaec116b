package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	page := Paginate(items, &PaginationParams{Page: 2, PerPage: 4})
	assert.Equal(t, []int{5, 6, 7, 8}, page.Items)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	last := Paginate(items, &PaginationParams{Page: 9, PerPage: 4})
	assert.Equal(t, []int{9, 10}, last.Items)
	assert.Equal(t, 3, last.Pagination.CurrentPage)
	assert.False(t, last.Pagination.HasNext)
}

func TestPaginateEmptyList(t *testing.T) {
	page := Paginate([]string{}, nil)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasPrev)
}
