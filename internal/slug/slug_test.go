package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "My First Post!", "my-first-post"},
		{"already a slug", "my-first-post", "my-first-post"},
		{"punctuation runs collapse", "Go -- & Fiber!!", "go-fiber"},
		{"digits survive", "Top 10 Tips", "top-10-tips"},
		{"leading and trailing separators", "  ...Hello World...  ", "hello-world"},
		{"unicode letters", "Crème Brûlée", "crème-brûlée"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
		{"mixed case", "GoLang ROCKS", "golang-rocks"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Make(tc.input))
		})
	}
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "my-first-post-2", WithSuffix("my-first-post", 2))
	assert.Equal(t, "my-first-post-10", WithSuffix("my-first-post", 10))
}
