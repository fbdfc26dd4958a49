package boxid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected string
	}{
		{
			name:     "Full Identifier",
			id:       "ITEM-20240101-01-0007",
			expected: "ITEM-20240101-01-",
		},
		{
			name:     "No Separator",
			id:       "NODASH",
			expected: "NODASH",
		},
		{
			name:     "Single Separator",
			id:       "A-0001",
			expected: "A-",
		},
		{
			name:     "Trailing Separator",
			id:       "A-0001-",
			expected: "A-0001-",
		},
		{
			name:     "Empty",
			id:       "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PrefixOf(tt.id))
		})
	}
}

func TestSerialOf(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected string
	}{
		{
			name:     "Numeric Tail",
			id:       "ITEM-20240101-01-0007",
			expected: "0007",
		},
		{
			name:     "Short Identifier",
			id:       "X-1",
			expected: "X-1",
		},
		{
			name:     "Non Numeric Tail",
			id:       "A-ABCD",
			expected: "ABCD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SerialOf(tt.id))
		})
	}
}

func TestSerialNumber(t *testing.T) {
	n, ok := SerialNumber("A-0042")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = SerialNumber("A-ABCD")
	assert.False(t, ok)

	_, ok = SerialNumber("A-00X1")
	assert.False(t, ok)
}
