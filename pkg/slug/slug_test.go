package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRoomSlug(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		suffix   string
		expected string
	}{
		{
			name:     "latin name",
			fullName: "John Smith",
			suffix:   "4f2a91c8",
			expected: "john-smith-4f2a91c8",
		},
		{
			name:     "cyrillic name",
			fullName: "Иван Петров",
			suffix:   "4f2a91c8",
			expected: "ivan-petrov-4f2a91c8",
		},
		{
			name:     "mixed case and digits stripped",
			fullName: "Alice O'Brien 3rd",
			suffix:   "abcd1234",
			expected: "alice-obrien-rd-abcd1234",
		},
		{
			name:     "multi-letter transliterations",
			fullName: "Жанна Щукина",
			suffix:   "x1",
			expected: "zhanna-shukina-x1",
		},
		{
			name:     "empty name still carries suffix",
			fullName: "",
			suffix:   "deadbeef",
			expected: "-deadbeef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateRoomSlug(tt.fullName, tt.suffix))
		})
	}
}
