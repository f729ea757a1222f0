package port

import (
	"image"
	"io"

	"wrist-triage/internal/domain/entity"
)

// ImageProcessor интерфейс обработки снимка перед показом и детекцией
type ImageProcessor interface {
	// Decode читает файл и нормализует его до 8 бит RGB
	Decode(r io.Reader) (*image.NRGBA, error)
	// Window применяет контраст, затем яркость; исходник не меняется
	Window(img image.Image, contrast, brightness float64) *image.NRGBA
	// Histogram считает гистограмму яркости
	Histogram(img image.Image) entity.WindowStats
}
