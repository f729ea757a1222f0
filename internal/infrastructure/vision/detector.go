//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

// GoCVDetector детектор на OpenCV DNN поверх ONNX-экспорта модели.
type GoCVDetector struct {
	opts DetectorOptions

	// Net не реентерабелен: SetInput и Forward меняют его состояние
	mu  sync.Mutex
	net gocv.Net
}

// NewGoCVDetector загружает ONNX-модель. Ошибка загрузки фатальна для вызывающего.
func NewGoCVDetector(modelPath string, opts DetectorOptions) (*GoCVDetector, error) {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load onnx model %q", modelPath)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set target: %w", err)
	}

	return &GoCVDetector{
		opts: opts.WithDefaults(),
		net:  net,
	}, nil
}

// Detect вписывает снимок во вход модели, запускает прямой проход и декодирует выход.
func (d *GoCVDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	boxed, lb := LetterboxImage(img, d.opts.InputSize)

	mat, err := gocv.ImageToMatRGB(boxed)
	if err != nil {
		return nil, fmt.Errorf("image to mat: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("empty image")
	}

	// Mat хранит BGR, модель ждёт RGB в [0,1]
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(d.opts.InputSize, d.opts.InputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	d.mu.Unlock()
	defer output.Close()

	shape := output.Size()
	if len(shape) != 3 {
		return nil, fmt.Errorf("unexpected output dims: %v", shape)
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	// Данные Mat живут до Close, копируем до выхода
	buf := make([]float32, len(data))
	copy(buf, data)

	return DecodeYOLO(YOLOOutput{Data: buf, Attrs: shape[1], Anchors: shape[2]}, lb, threshold, d.opts)
}

// Close освобождает сеть OpenCV
func (d *GoCVDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// Проверка реализации интерфейса
var _ port.Detector = (*GoCVDetector)(nil)
