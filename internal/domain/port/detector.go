package port

import (
	"context"
	"image"

	"wrist-triage/internal/domain/entity"
)

// Detector интерфейс внешнего детектора находок
type Detector interface {
	// Detect запускает инференс и возвращает находки с уверенностью не ниже threshold,
	// отсортированные по убыванию уверенности
	Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.Finding, error)
}

// Annotator интерфейс отрисовки находок поверх снимка
type Annotator interface {
	// Annotate возвращает новое изображение с рамками и подписями, исходное не меняется
	Annotate(img image.Image, findings []entity.Finding) (image.Image, error)
}
