package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"minVerticalClearance", []string{"min", "vertical", "clearance"}},
		{"depth_in", []string{"depth", "in"}},
		{"separacion-vertical", []string{"separacion", "vertical"}},
		{"HDPEConduit", []string{"hdpe", "conduit"}},
		{"clearance12ft", []string{"clearance", "12", "ft"}},
		{"slope %", []string{"slope", "%"}},
		{"grade%", []string{"grade", "%"}},
		{"Burial Depth (in.)", []string{"burial", "depth", "in"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "verticalclearance", NormalizeName("vertical_clearance"))
	assert.Equal(t, "verticalclearance", NormalizeName("VerticalClearance"))
	assert.Equal(t, "verticalclearance", NormalizeName("  vertical-clearance "))
}
