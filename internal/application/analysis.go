package app

import (
	"context"
	"errors"
	"image"
	"io"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

type AnalysisService struct {
	sessions  *SessionService
	images    port.ImageProcessor
	detector  port.Detector
	annotator port.Annotator
}

// RenderOutput всё, что нужно для показа сессии
type RenderOutput struct {
	Session  *entity.Session
	Windowed *image.NRGBA       // снимок после контраста и яркости, nil без снимка
	Stats    entity.WindowStats // гистограмма окна
	Report   *entity.Report     // nil, пока анализ не запрошен
}

// NewAnalysisService создаёт сервис показа и анализа снимков.
func NewAnalysisService(sessions *SessionService, images port.ImageProcessor, detector port.Detector, annotator port.Annotator) *AnalysisService {
	return &AnalysisService{
		sessions:  sessions,
		images:    images,
		detector:  detector,
		annotator: annotator,
	}
}

// Render применяет окно к нормализованному снимку и, если анализ запрошен,
// заново запускает детектор. Результат не кешируется.
func (s *AnalysisService) Render(ctx context.Context, id string) (*RenderOutput, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &RenderOutput{Session: session}
	if !session.HasImage() {
		return out, nil
	}

	out.Windowed = s.images.Window(session.Image, session.Params.Contrast, session.Params.Brightness)
	out.Stats = s.images.Histogram(out.Windowed)

	if !session.Analyzed() {
		return out, nil
	}

	out.Report, err = s.detect(ctx, out.Windowed, session.Params.Threshold)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Analyze разовый анализ без сессии: декодирование, окно, детекция.
func (s *AnalysisService) Analyze(ctx context.Context, r io.Reader, params entity.DisplayParams) (*entity.Report, error) {
	params, err := params.Normalize()
	if err != nil {
		return nil, err
	}

	img, err := s.images.Decode(r)
	if err != nil {
		return nil, err
	}

	return s.detect(ctx, s.images.Window(img, params.Contrast, params.Brightness), params.Threshold)
}

func (s *AnalysisService) detect(ctx context.Context, img image.Image, threshold float64) (*entity.Report, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	findings, err := s.detector.Detect(ctx, img, threshold)
	if err != nil {
		return nil, err
	}
	findings = entity.FilterByConfidence(findings, threshold)

	var annotated image.Image = img
	if s.annotator != nil {
		annotated, err = s.annotator.Annotate(img, findings)
		if err != nil {
			return nil, err
		}
	}

	return entity.NewReport(findings, threshold, annotated), nil
}
