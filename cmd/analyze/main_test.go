package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-ticker", "ry.to", "-start", "2024-01-02", "-format", "xlsx", "-chart"})
	require.NoError(t, err)
	assert.Equal(t, "ry.to", o.ticker)
	assert.Equal(t, "xlsx", o.format)
	assert.True(t, o.chart)

	tests := []struct {
		name string
		args []string
	}{
		{"missing ticker", []string{"-start", "2024-01-02"}},
		{"missing start", []string{"-ticker", "RY.TO"}},
		{"bad start", []string{"-ticker", "RY.TO", "-start", "02/01/2024"}},
		{"bad end", []string{"-ticker", "RY.TO", "-start", "2024-01-02", "-end", "soon"}},
		{"bad format", []string{"-ticker", "RY.TO", "-start", "2024-01-02", "-format", "csv"}},
		{"unknown flag", []string{"-ticker", "RY.TO", "-start", "2024-01-02", "-x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args)
			assert.Error(t, err)
		})
	}
}
