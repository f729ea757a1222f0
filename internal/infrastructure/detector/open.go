package detector

import (
	"errors"
	"fmt"
	"log"
	"time"

	"wrist-triage/internal/domain/port"
	"wrist-triage/internal/infrastructure/remote"
	"wrist-triage/internal/infrastructure/vision"
)

var ErrUnknownBackend = errors.New("unknown detector backend")

// Названия бэкендов в конфигурации
const (
	BackendGoCV   = "gocv"
	BackendTFLite = "tflite"
	BackendHTTP   = "http"
	BackendWS     = "ws"
)

// Settings параметры открытия детектора
type Settings struct {
	Backend      string
	ModelPath    string
	LabelsPath   string
	InferenceURL string
	WSURL        string
	InputSize    int
	IoU          float64
	Timeout      time.Duration
}

// Open создаёт детектор выбранного бэкенда
func Open(s Settings) (port.Detector, error) {
	labels, err := LoadLabels(s.LabelsPath)
	if err != nil {
		return nil, err
	}

	opts := vision.DetectorOptions{
		InputSize: s.InputSize,
		IoU:       s.IoU,
		Labels:    labels,
	}.WithDefaults()

	log.Printf("opening %s detector (%d classes)", s.Backend, len(opts.Labels))

	switch s.Backend {
	case BackendGoCV:
		d, err := vision.NewGoCVDetector(s.ModelPath, opts)
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendTFLite:
		d, err := vision.NewTFLiteDetector(s.ModelPath, opts)
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendHTTP:
		if s.InferenceURL == "" {
			return nil, fmt.Errorf("%s backend: inference url is empty", s.Backend)
		}
		return remote.NewHTTPDetector(s.InferenceURL, s.Timeout), nil
	case BackendWS:
		if s.WSURL == "" {
			return nil, fmt.Errorf("%s backend: websocket url is empty", s.Backend)
		}
		return remote.NewWSDetector(s.WSURL, s.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}
}
