package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		amount float64
		want   string
	}{
		{"francs have no decimals", "RWF", 2950, "RWF 2,950"},
		{"francs are rounded", "RWF", 1250000.6, "RWF 1,250,001"},
		{"zero", "RWF", 0, "RWF 0"},
		{"dollars keep cents", "USD", 1234.5, "USD 1,234.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.code, "en")
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Format(tt.amount))
		})
	}
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter("", "")
	require.NoError(t, err)
	assert.Equal(t, "RWF", f.Code())

	_, err = NewFormatter("ZZZZ", "en")
	assert.Error(t, err)

	_, err = NewFormatter("RWF", "not a locale!")
	assert.Error(t, err)

	assert.Panics(t, func() { MustFormatter("??", "en") })
}
