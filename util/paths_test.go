package util

import (
	"testing"
)

func TestPathsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		path1    string
		path2    string
		expected bool
	}{
		{
			name:     "identical paths",
			path1:    "/tmp/source",
			path2:    "/tmp/source",
			expected: true,
		},
		{
			name:     "path1 contains path2",
			path1:    "/tmp/source/data",
			path2:    "/tmp/source",
			expected: true,
		},
		{
			name:     "path2 contains path1",
			path1:    "/tmp/source",
			path2:    "/tmp/source/dest",
			expected: true,
		},
		{
			name:     "completely separate paths",
			path1:    "/tmp/source",
			path2:    "/mnt/share",
			expected: false,
		},
		{
			name:     "sibling directories",
			path1:    "/tmp/source",
			path2:    "/tmp/dest",
			expected: false,
		},
		{
			name:     "shared prefix is not nesting",
			path1:    "/tmp/source",
			path2:    "/tmp/source-copy",
			expected: false,
		},
		{
			name:     "relative paths - overlapping",
			path1:    "source",
			path2:    "source/dest",
			expected: true,
		},
		{
			name:     "relative paths - separate",
			path1:    "source",
			path2:    "dest",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PathsOverlap(tt.path1, tt.path2)
			if result != tt.expected {
				t.Errorf("PathsOverlap(%q, %q) = %v, expected %v", tt.path1, tt.path2, result, tt.expected)
			}
		})
	}
}
