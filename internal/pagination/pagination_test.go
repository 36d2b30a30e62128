package pagination

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func render(items []Item) string {
	parts := make([]string, len(items))
	for i, it := range items {
		if it.Ellipsis {
			parts[i] = "…"
		} else {
			parts[i] = strconv.Itoa(it.Page)
		}
	}
	return strings.Join(parts, ",")
}

func TestVisiblePages(t *testing.T) {
	tests := []struct {
		current, total int
		want           string
	}{
		{1, 1, "1"},
		{3, 10, "1,2,3,4,…,10"},
		{1, 10, "1,2,…,10"},
		{10, 10, "1,…,9,10"},
		{5, 10, "1,…,4,5,6,…,10"},
		{4, 10, "1,…,3,4,5,…,10"},
		{7, 10, "1,…,6,7,8,…,10"},
		{3, 5, "1,2,3,4,5"},
		{1, 4, "1,2,…,4"},
		{2, 3, "1,2,3"},
		{1, 2, "1,2"},
		{0, 5, "1,2,…,5"},
		{99, 5, "1,…,4,5"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.current, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, render(VisiblePages(tt.current, tt.total)))
		})
	}
}

func TestVisiblePages_Empty(t *testing.T) {
	assert.Empty(t, VisiblePages(1, 0))
	assert.NotNil(t, VisiblePages(1, -3))
}

func TestVisiblePages_Properties(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for current := 1; current <= total; current++ {
			items := VisiblePages(current, total)
			label := fmt.Sprintf("%d of %d", current, total)

			assert.Equal(t, 1, items[0].Page, label)
			assert.Equal(t, total, items[len(items)-1].Page, label)

			prev := 0
			seenCurrent := false
			for i, it := range items {
				if it.Ellipsis {
					assert.False(t, i > 0 && items[i-1].Ellipsis, "adjacent ellipses: %s", label)
					continue
				}
				assert.GreaterOrEqual(t, it.Page, 1, label)
				assert.LessOrEqual(t, it.Page, total, label)
				assert.Greater(t, it.Page, prev, "pages not increasing: %s", label)
				prev = it.Page
				seenCurrent = seenCurrent || it.Page == current
			}
			assert.True(t, seenCurrent, "current page missing: %s", label)
		}
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}
