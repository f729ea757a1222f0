package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayParams_NormalizeSnapsToStep(t *testing.T) {
	p, err := DisplayParams{Contrast: 1.46, Brightness: 0.54, Threshold: 0.27}.Normalize()
	require.NoError(t, err)
	require.Equal(t, 1.5, p.Contrast)
	require.Equal(t, 0.5, p.Brightness)
	require.Equal(t, 0.25, p.Threshold)
}

func TestDisplayParams_NormalizeKeepsDefaults(t *testing.T) {
	p, err := DefaultParams().Normalize()
	require.NoError(t, err)
	require.Equal(t, DefaultParams(), p)
}

func TestDisplayParams_NormalizeRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		p    DisplayParams
	}{
		{"contrast low", DisplayParams{Contrast: 0.3, Brightness: 1, Threshold: 0.25}},
		{"contrast high", DisplayParams{Contrast: 3.2, Brightness: 1, Threshold: 0.25}},
		{"brightness zero", DisplayParams{Contrast: 1, Brightness: 0, Threshold: 0.25}},
		{"threshold low", DisplayParams{Contrast: 1, Brightness: 1, Threshold: 0.05}},
		{"threshold high", DisplayParams{Contrast: 1, Brightness: 1, Threshold: 0.95}},
		{"nan", DisplayParams{Contrast: math.NaN(), Brightness: 1, Threshold: 0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Normalize()
			require.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestDisplayParams_NormalizeAcceptsBounds(t *testing.T) {
	_, err := DisplayParams{Contrast: 0.5, Brightness: 3.0, Threshold: 0.10}.Normalize()
	require.NoError(t, err)
	_, err = DisplayParams{Contrast: 3.0, Brightness: 0.5, Threshold: 0.90}.Normalize()
	require.NoError(t, err)
}
