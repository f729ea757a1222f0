//go:build tflite
// +build tflite

package vision

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/mattn/go-tflite"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

// TFLiteDetector детектор на интерпретаторе TensorFlow Lite.
type TFLiteDetector struct {
	opts DetectorOptions

	// интерпретатор держит тензоры внутри, вызовы сериализуем
	mu     sync.Mutex
	model  *tflite.Model
	interp *tflite.Interpreter
}

// NewTFLiteDetector загружает модель и размещает тензоры.
func NewTFLiteDetector(modelPath string, opts DetectorOptions) (*TFLiteDetector, error) {
	opts = opts.WithDefaults()

	model := tflite.NewModelFromFile(modelPath)
	if model == nil {
		return nil, fmt.Errorf("cannot load model %q", modelPath)
	}

	options := tflite.NewInterpreterOptions()
	defer options.Delete()
	options.SetNumThread(opts.Threads)

	interp := tflite.NewInterpreter(model, options)
	if interp == nil {
		model.Delete()
		return nil, fmt.Errorf("cannot create interpreter")
	}

	if status := interp.AllocateTensors(); status != tflite.OK {
		interp.Delete()
		model.Delete()
		return nil, fmt.Errorf("allocate failed: %v", status)
	}

	// Размер входа берём из самой модели
	input := interp.GetInputTensor(0)
	if input.NumDims() == 4 && input.Dim(1) > 0 {
		opts.InputSize = input.Dim(1)
	}

	return &TFLiteDetector{opts: opts, model: model, interp: interp}, nil
}

// Detect заполняет входной тензор, запускает интерпретатор и декодирует выход.
func (d *TFLiteDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	boxed, lb := LetterboxImage(img, d.opts.InputSize)

	d.mu.Lock()
	defer d.mu.Unlock()

	input := d.interp.GetInputTensor(0)
	switch input.Type() {
	case tflite.Float32:
		input.SetFloat32s(TensorNHWC(boxed))
	case tflite.UInt8:
		pix := make([]uint8, 0, lb.Size*lb.Size*3)
		for i := 0; i < len(boxed.Pix); i += 4 {
			pix = append(pix, boxed.Pix[i], boxed.Pix[i+1], boxed.Pix[i+2])
		}
		input.SetUint8s(pix)
	default:
		return nil, fmt.Errorf("unsupported input tensor type: %v", input.Type())
	}

	if status := d.interp.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("invoke failed: %v", status)
	}

	output := d.interp.GetOutputTensor(0)
	if output.NumDims() != 3 {
		return nil, fmt.Errorf("unexpected output dims: %d", output.NumDims())
	}

	data := output.Float32s()
	buf := make([]float32, len(data))
	copy(buf, data)

	return DecodeYOLO(YOLOOutput{
		Data:       buf,
		Attrs:      output.Dim(1),
		Anchors:    output.Dim(2),
		Normalized: true,
	}, lb, threshold, d.opts)
}

// Close освобождает интерпретатор и модель
func (d *TFLiteDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interp.Delete()
	d.model.Delete()
	return nil
}

// Проверка реализации интерфейса
var _ port.Detector = (*TFLiteDetector)(nil)
