package vision

import (
	"image"
	"io"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

// Processor собирает декодирование, нормализацию и окно в одну реализацию порта
type Processor struct{}

// NewProcessor создаёт обработчик снимков
func NewProcessor() *Processor {
	return &Processor{}
}

// Decode декодирует файл и приводит его к 8 битам RGB
func (p *Processor) Decode(r io.Reader) (*image.NRGBA, error) {
	raster, _, err := DecodeRaster(r)
	if err != nil {
		return nil, err
	}
	return Normalize(raster)
}

// Window см. Window
func (p *Processor) Window(img image.Image, contrast, brightness float64) *image.NRGBA {
	return Window(img, contrast, brightness)
}

// Histogram см. Histogram
func (p *Processor) Histogram(img image.Image) entity.WindowStats {
	return Histogram(img)
}

// Проверка реализации интерфейса
var _ port.ImageProcessor = (*Processor)(nil)
