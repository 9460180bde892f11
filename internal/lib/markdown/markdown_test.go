package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains []string
		excludes []string
	}{
		{
			name:     "heading and emphasis",
			src:      "# Title\n\nsome *text*",
			contains: []string{"<h1>Title</h1>", "<em>text</em>"},
		},
		{
			name:     "hard wraps",
			src:      "line one\nline two",
			contains: []string{"line one<br />"},
		},
		{
			name:     "autolink",
			src:      "see https://example.com",
			contains: []string{`<a href="https://example.com">`},
		},
		{
			name:     "raw html dropped",
			src:      "<script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
		{
			name: "empty",
			src:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(tt.src)
			require.NoError(t, err)

			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
