package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"Product Launch 2026", "product-launch-2026"},
		{"  spaced   out  ", "spaced-out"},
		{"MixedCASE-Title", "mixedcase-title"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Slugify(c.title), c.title)
	}
}

func TestSlugifyNonASCIIFallsBackToRandom(t *testing.T) {
	// 全部字符被折叠时退回随机 slug
	got := Slugify("！！！")
	assert.Len(t, got, 8)
	assert.NotEqual(t, Slugify("！！！"), got)
}

func TestReadableMime(t *testing.T) {
	assert.True(t, readableMime("text/plain"))
	assert.True(t, readableMime("text/markdown; charset=utf-8"))
	assert.True(t, readableMime("application/json"))
	assert.False(t, readableMime("application/pdf"))
	assert.False(t, readableMime("image/png"))
}
