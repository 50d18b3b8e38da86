package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_LastPartialPage(t *testing.T) {
	p := Resolve("3", 13, 6)

	assert.Equal(t, 3, p.Number)
	assert.Equal(t, 3, p.NumPages)
	assert.Equal(t, 12, p.Offset())
	assert.Equal(t, 6, p.Limit())
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
	assert.Nil(t, p.NextPage)
	if assert.NotNil(t, p.PrevPage) {
		assert.Equal(t, 2, *p.PrevPage)
	}
}

func TestResolve_ClampsInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"non numeric", "abc", 1},
		{"empty", "", 1},
		{"too large", "99", 3},
		{"zero", "0", 1},
		{"negative", "-4", 1},
		{"padded", " 2 ", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.raw, 13, 6).Number)
		})
	}
}

func TestResolve_EmptyResultHasOnePage(t *testing.T) {
	p := Resolve("5", 0, 6)

	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.NumPages)
	assert.Equal(t, 0, p.Offset())
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestNumPages(t *testing.T) {
	assert.Equal(t, 1, NumPages(0, 6))
	assert.Equal(t, 1, NumPages(6, 6))
	assert.Equal(t, 2, NumPages(7, 6))
	assert.Equal(t, 3, NumPages(13, 6))
}
