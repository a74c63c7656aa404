package repurpose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		want       map[string]any
		structured bool
	}{
		{
			name:       "bare object",
			raw:        `{"post":"hi","hashtags":["#go"]}`,
			want:       map[string]any{"post": "hi", "hashtags": []any{"#go"}},
			structured: true,
		},
		{
			name:       "object wrapped in prose",
			raw:        "Sure! Here it is:\n```json\n{\"tldr\": \"short\", \"score\": 3}\n```\nEnjoy.",
			want:       map[string]any{"tldr": "short", "score": float64(3)},
			structured: true,
		},
		{
			name:       "nested braces",
			raw:        `x {"timing": {"hook": "0-5s"}} y`,
			want:       map[string]any{"timing": map[string]any{"hook": "0-5s"}},
			structured: true,
		},
		{
			name: "no braces",
			raw:  "just some text",
			want: map[string]any{"content": "just some text", "platform": "twitter"},
		},
		{
			name: "malformed object",
			raw:  `{"post": "unterminated}`,
			want: map[string]any{"content": `{"post": "unterminated}`, "platform": "twitter"},
		},
		{
			name: "closing brace before opening",
			raw:  "} nothing {",
			want: map[string]any{"content": "} nothing {", "platform": "twitter"},
		},
		{
			name: "mock output",
			raw:  "[MOCK TWITTER] hello world",
			want: map[string]any{"content": "[MOCK TWITTER] hello world", "platform": "twitter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, structured := Normalize(tt.raw, Twitter)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.structured, structured)
		})
	}
}
