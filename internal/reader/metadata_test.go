package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMetadata(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "trims strings and drops empties",
			in: map[string]any{
				"Title":    "  A Paper  ",
				"Author":   "   ",
				"Subject":  "",
				"Producer": "pdfTeX",
			},
			want: map[string]any{
				"Title":    "A Paper",
				"Producer": "pdfTeX",
			},
		},
		{
			name: "sequences filtered and dropped when emptied",
			in: map[string]any{
				"Keywords": []any{" pdf ", "", nil, "links"},
				"Empty":    []any{"", nil, "  "},
			},
			want: map[string]any{
				"Keywords": []any{"pdf", "links"},
			},
		},
		{
			name: "nested mappings recurse without depth limit",
			in: map[string]any{
				"dc": map[string]any{
					"title": " t ",
					"inner": map[string]any{
						"deep": map[string]any{"gone": "  "},
					},
				},
			},
			want: map[string]any{
				"dc": map[string]any{"title": "t"},
			},
		},
		{
			name: "non-string scalars pass through",
			in: map[string]any{
				"Pages":     3,
				"Encrypted": false,
				"Score":     0.5,
			},
			want: map[string]any{
				"Pages":     3,
				"Encrypted": false,
				"Score":     0.5,
			},
		},
		{
			name: "nested sequences",
			in: map[string]any{
				"groups": []any{[]any{" a ", ""}, []any{""}, 7},
			},
			want: map[string]any{
				"groups": []any{[]any{"a"}, 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMetadata(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeMetadataIsIdempotent(t *testing.T) {
	md := map[string]any{
		"Title":    " x ",
		"Keywords": []any{" a ", "", nil},
		"nested":   map[string]any{"k": "  v  ", "drop": ""},
		"Pages":    12,
	}
	once := NormalizeMetadata(md)
	// Normalizing the already-normalized structure changes nothing.
	again := NormalizeMetadata(once)
	assert.Equal(t, map[string]any{
		"Title":    "x",
		"Keywords": []any{"a"},
		"nested":   map[string]any{"k": "v"},
		"Pages":    12,
	}, again)
}

func TestNormalizeMetadataNil(t *testing.T) {
	assert.Nil(t, NormalizeMetadata(nil))
}
