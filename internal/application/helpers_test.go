package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/infrastructure/storage"
	"wrist-triage/internal/infrastructure/vision"
)

// fakeDetector возвращает заданные находки и считает вызовы
type fakeDetector struct {
	mu         sync.Mutex
	findings   []entity.Finding
	err        error
	calls      int
	thresholds []float64
	lastImage  image.Image
}

func (f *fakeDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.Finding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.thresholds = append(f.thresholds, threshold)
	f.lastImage = img
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.Finding, len(f.findings))
	copy(out, f.findings)
	return out, nil
}

func (f *fakeDetector) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func finding(label string, conf float64) entity.Finding {
	return entity.Finding{
		Box:        entity.Box{X1: 2, Y1: 2, X2: 20, Y2: 20},
		ClassID:    3,
		Label:      label,
		Confidence: conf,
	}
}

// pngBytes кодирует однотонный снимок
func pngBytes(t *testing.T, w, h int, v uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	img.SetGray(0, 0, color.Gray{Y: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newServices(t *testing.T, det *fakeDetector) (*SessionService, *AnalysisService) {
	t.Helper()
	annotator, err := vision.NewBoxAnnotator(2, nil)
	require.NoError(t, err)

	images := vision.NewProcessor()
	sessions := NewSessionService(storage.NewMemorySessionRepository(), images)
	return sessions, NewAnalysisService(sessions, images, det, annotator)
}
