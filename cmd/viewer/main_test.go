package main

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wrist-triage/config"
	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

type closingDetector struct {
	closed int
}

func (d *closingDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.Finding, error) {
	return nil, nil
}

func (d *closingDetector) Close() error {
	d.closed++
	return nil
}

func TestRun_ClosesDetectorOnServerError(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.HTTPAddr = "bad-address"

	det := &closingDetector{}
	err := run(context.Background(), cfg, func() (port.Detector, error) { return det, nil })
	require.Error(t, err)
	require.Equal(t, 1, det.closed)
}

func TestRun_ClosesDetectorOnShutdown(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	det := &closingDetector{}
	require.NoError(t, run(ctx, cfg, func() (port.Detector, error) { return det, nil }))
	require.Equal(t, 1, det.closed)
}

func TestRun_DetectorOpenError(t *testing.T) {
	cfg := config.NewDefaultConfig()

	err := run(context.Background(), cfg, func() (port.Detector, error) { return nil, errors.New("no model") })
	require.ErrorContains(t, err, "no model")
}
