package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"two cities", "Lyon, Dijon", []string{"Lyon", "Dijon"}},
		{"drops blanks", " ,Lyon,, ,Dijon, ", []string{"Lyon", "Dijon"}},
		{"only separators", ", ,", []string{}},
		{"empty", "", []string{}},
		{"keeps inner spaces", "New York,  Los Angeles", []string{"New York", "Los Angeles"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.in, ","))
		})
	}
}

func TestEqualFoldAny(t *testing.T) {
	assert.True(t, EqualFoldAny(" SKIP ", "skip", "/skip"))
	assert.True(t, EqualFoldAny("/skip", "skip", "/skip"))
	assert.False(t, EqualFoldAny("skipper", "skip"))
	assert.False(t, EqualFoldAny("skip"))
}
