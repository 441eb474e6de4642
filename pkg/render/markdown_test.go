package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		contains []string
		excludes []string
	}{
		{
			name:     "itinerary layout",
			markdown: "## Day 1\n**Morning:** Fushimi Inari (2h)\nTravel Tip: go early",
			contains: []string{"<h2>Day 1</h2>", "<strong>Morning:</strong> Fushimi Inari (2h)", "go early"},
		},
		{
			name:     "raw html is dropped",
			markdown: "Hello <script>alert(1)</script> world",
			excludes: []string{"<script>"},
		},
		{
			name:     "unsafe links are not linked",
			markdown: "[click](javascript:alert(1))",
			excludes: []string{`href="javascript:`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHTML(tt.markdown)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}
}
