package vision

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	"wrist-triage/internal/domain/entity"
)

// ErrBackendUnavailable бэкенд не собран в этот бинарник
var ErrBackendUnavailable = errors.New("detector backend is not available in this build")

const (
	DefaultInputSize     = 640
	DefaultIoU           = 0.7
	DefaultMaxDetections = 300

	letterboxFill = 114
)

// DetectorOptions общие настройки локальных бэкендов
type DetectorOptions struct {
	InputSize     int      // сторона квадратного входа модели
	IoU           float64  // порог IoU для подавления пересечений
	MaxDetections int      // максимум находок после NMS
	Labels        []string // имена классов по индексу
	Threads       int      // потоки инференса, 0 значит по умолчанию
}

// WithDefaults заполняет нулевые поля значениями по умолчанию
func (o DetectorOptions) WithDefaults() DetectorOptions {
	if o.InputSize <= 0 {
		o.InputSize = DefaultInputSize
	}
	if o.IoU <= 0 || o.IoU > 1 {
		o.IoU = DefaultIoU
	}
	if o.MaxDetections <= 0 {
		o.MaxDetections = DefaultMaxDetections
	}
	if len(o.Labels) == 0 {
		o.Labels = entity.GrazLabels
	}
	if o.Threads <= 0 {
		o.Threads = 4
	}
	return o
}

// Letterbox параметры вписывания снимка в квадратный вход модели
type Letterbox struct {
	Size  int     // сторона входа
	Scale float64 // коэффициент масштабирования исходника
	PadX  int     // отступ слева
	PadY  int     // отступ сверху
	SrcW  int     // ширина исходника
	SrcH  int     // высота исходника
}

// LetterboxImage вписывает изображение в квадрат size×size с сохранением
// пропорций и серыми полями (114), как при обучении модели.
func LetterboxImage(img image.Image, size int) (*image.NRGBA, Letterbox) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := math.Min(float64(size)/float64(w), float64(size)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	lb := Letterbox{
		Size:  size,
		Scale: scale,
		PadX:  (size - nw) / 2,
		PadY:  (size - nh) / 2,
		SrcW:  w,
		SrcH:  h,
	}

	resized := imaging.Resize(img, nw, nh, imaging.Linear)
	canvas := imaging.New(size, size, color.NRGBA{R: letterboxFill, G: letterboxFill, B: letterboxFill, A: 255})
	canvas = imaging.Paste(canvas, resized, image.Pt(lb.PadX, lb.PadY))

	return canvas, lb
}

// Unmap переводит рамку cx,cy,w,h из координат входа модели в пиксели исходника.
func (l Letterbox) Unmap(cx, cy, w, h float64) entity.Box {
	x1 := (cx - w/2 - float64(l.PadX)) / l.Scale
	y1 := (cy - h/2 - float64(l.PadY)) / l.Scale
	x2 := (cx + w/2 - float64(l.PadX)) / l.Scale
	y2 := (cy + h/2 - float64(l.PadY)) / l.Scale

	return entity.Box{
		X1: clampInt(int(math.Round(x1)), 0, l.SrcW),
		Y1: clampInt(int(math.Round(y1)), 0, l.SrcH),
		X2: clampInt(int(math.Round(x2)), 0, l.SrcW),
		Y2: clampInt(int(math.Round(y2)), 0, l.SrcH),
	}
}

// TensorNHWC раскладывает RGB в float32 [0,1] построчно, каналы чередуются.
func TensorNHWC(img *image.NRGBA) []float32 {
	b := img.Bounds()
	out := make([]float32, 0, b.Dx()*b.Dy()*3)
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			out = append(out, float32(row[x])/255, float32(row[x+1])/255, float32(row[x+2])/255)
		}
	}
	return out
}

// YOLOOutput сырой выход головы детекции формы [1, 4+nc, anchors]
type YOLOOutput struct {
	Data       []float32
	Attrs      int  // 4 + число классов
	Anchors    int  // число якорей, 8400 для входа 640
	Normalized bool // координаты в долях входа (экспорт TFLite)
}

// DecodeYOLO превращает выход модели в находки: порог по лучшему классу,
// NMS внутри класса, сортировка по убыванию уверенности.
func DecodeYOLO(out YOLOOutput, lb Letterbox, threshold float64, opts DetectorOptions) ([]entity.Finding, error) {
	opts = opts.WithDefaults()

	if out.Attrs <= 4 || out.Anchors <= 0 {
		return nil, fmt.Errorf("unexpected output shape: attrs=%d anchors=%d", out.Attrs, out.Anchors)
	}
	if len(out.Data) < out.Attrs*out.Anchors {
		return nil, fmt.Errorf("output too short: %d < %d", len(out.Data), out.Attrs*out.Anchors)
	}

	coord := 1.0
	if out.Normalized {
		coord = float64(lb.Size)
	}

	n := out.Anchors
	at := func(attr, anchor int) float64 {
		return float64(out.Data[attr*n+anchor])
	}

	candidates := make([]entity.Finding, 0, 64)
	for a := 0; a < n; a++ {
		best, score := 0, at(4, a)
		for c := 1; c < out.Attrs-4; c++ {
			if s := at(4+c, a); s > score {
				best, score = c, s
			}
		}
		if score < threshold {
			continue
		}

		box := lb.Unmap(at(0, a)*coord, at(1, a)*coord, at(2, a)*coord, at(3, a)*coord)
		if box.Area() == 0 {
			continue
		}

		candidates = append(candidates, entity.Finding{
			Box:        box,
			ClassID:    best,
			Label:      entity.LabelFor(opts.Labels, best),
			Confidence: score,
		})
	}

	kept := NMS(candidates, opts.IoU)
	if len(kept) > opts.MaxDetections {
		kept = kept[:opts.MaxDetections]
	}
	return kept, nil
}

// NMS подавляет рамки одного класса, пересекающиеся сильнее порога iou.
// Результат отсортирован по убыванию уверенности.
func NMS(findings []entity.Finding, iou float64) []entity.Finding {
	sorted := make([]entity.Finding, len(findings))
	copy(sorted, findings)
	SortByConfidence(sorted)

	kept := make([]entity.Finding, 0, len(sorted))
	for _, f := range sorted {
		suppressed := false
		for _, k := range kept {
			if k.ClassID == f.ClassID && IoU(k.Box, f.Box) > iou {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, f)
		}
	}
	return kept
}

// SortByConfidence сортирует находки по убыванию уверенности, равные сохраняют порядок.
func SortByConfidence(findings []entity.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Confidence > findings[j].Confidence
	})
}

// IoU отношение площади пересечения к площади объединения.
func IoU(a, b entity.Box) float64 {
	inter := a.Rect().Intersect(b.Rect())
	if inter.Empty() {
		return 0
	}
	ia := inter.Dx() * inter.Dy()
	union := a.Area() + b.Area() - ia
	if union <= 0 {
		return 0
	}
	return float64(ia) / float64(union)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
