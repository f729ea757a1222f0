package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/infrastructure/vision"
)

func TestSessionService_LoadImageResetsToIdle(t *testing.T) {
	sessions, _ := newServices(t, &fakeDetector{})
	ctx := context.Background()

	_, err := sessions.LoadImage(ctx, "s1", bytes.NewReader(pngBytes(t, 40, 30, 90)), "a.png")
	require.NoError(t, err)

	session, err := sessions.RequestAnalysis(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, entity.StateAnalyzed, session.State)

	session, err = sessions.LoadImage(ctx, "s1", bytes.NewReader(pngBytes(t, 40, 30, 120)), "b.png")
	require.NoError(t, err)
	require.Equal(t, entity.StateIdle, session.State)
	require.Equal(t, "b.png", session.Filename)
	require.Equal(t, 40, session.Image.Bounds().Dx())
}

func TestSessionService_LoadImageDecodeError(t *testing.T) {
	sessions, _ := newServices(t, &fakeDetector{})

	_, err := sessions.LoadImage(context.Background(), "s1", strings.NewReader("not an image"), "x.png")
	require.ErrorIs(t, err, vision.ErrDecode)

	session, err := sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.False(t, session.HasImage())
}

func TestSessionService_FailedUploadDropsAnalyzedImage(t *testing.T) {
	det := &fakeDetector{findings: []entity.Finding{finding("fracture", 0.9)}}
	sessions, analysis := newServices(t, det)
	ctx := context.Background()

	_, err := sessions.LoadImage(ctx, "s1", bytes.NewReader(pngBytes(t, 40, 30, 90)), "a.png")
	require.NoError(t, err)
	_, err = sessions.SetParams(ctx, "s1", entity.DisplayParams{Contrast: 1.5, Brightness: 1.0, Threshold: 0.4})
	require.NoError(t, err)
	_, err = sessions.RequestAnalysis(ctx, "s1")
	require.NoError(t, err)

	_, err = sessions.LoadImage(ctx, "s1", strings.NewReader("garbage"), "corrupt.png")
	require.ErrorIs(t, err, vision.ErrDecode)

	session, err := sessions.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, entity.StateIdle, session.State)
	require.False(t, session.HasImage())
	require.Empty(t, session.Filename)
	require.InDelta(t, 1.5, session.Params.Contrast, 1e-9)

	out, err := analysis.Render(ctx, "s1")
	require.NoError(t, err)
	require.Nil(t, out.Report)
	require.Equal(t, 0, det.Calls())
}

func TestSessionService_RequestAnalysisWithoutImage(t *testing.T) {
	sessions, _ := newServices(t, &fakeDetector{})

	_, err := sessions.RequestAnalysis(context.Background(), "s1")
	require.ErrorIs(t, err, entity.ErrNoImage)

	session, err := sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, entity.StateIdle, session.State)
}

func TestSessionService_SetParamsKeepsState(t *testing.T) {
	sessions, _ := newServices(t, &fakeDetector{})
	ctx := context.Background()

	_, err := sessions.LoadImage(ctx, "s1", bytes.NewReader(pngBytes(t, 8, 8, 50)), "a.png")
	require.NoError(t, err)
	_, err = sessions.RequestAnalysis(ctx, "s1")
	require.NoError(t, err)

	session, err := sessions.SetParams(ctx, "s1", entity.DisplayParams{Contrast: 1.5, Brightness: 0.8, Threshold: 0.4})
	require.NoError(t, err)
	require.Equal(t, entity.StateAnalyzed, session.State)
	require.InDelta(t, 1.5, session.Params.Contrast, 1e-9)

	_, err = sessions.SetParams(ctx, "s1", entity.DisplayParams{Contrast: 5, Brightness: 1, Threshold: 0.25})
	require.ErrorIs(t, err, entity.ErrInvalidParams)

	session, err = sessions.Get(ctx, "s1")
	require.NoError(t, err)
	require.InDelta(t, 1.5, session.Params.Contrast, 1e-9)
}

func TestSessionService_Reset(t *testing.T) {
	sessions, _ := newServices(t, &fakeDetector{})
	ctx := context.Background()

	_, err := sessions.LoadImage(ctx, "s1", bytes.NewReader(pngBytes(t, 8, 8, 50)), "a.png")
	require.NoError(t, err)

	session, err := sessions.Reset(ctx, "s1")
	require.NoError(t, err)
	require.False(t, session.HasImage())
	require.Equal(t, entity.DefaultParams(), session.Params)
}
