package entity

import "image"

// Box прямоугольная область в пикселях анализируемого изображения
type Box struct {
	X1 int `json:"x1"` // левая граница
	Y1 int `json:"y1"` // верхняя граница
	X2 int `json:"x2"` // правая граница
	Y2 int `json:"y2"` // нижняя граница
}

// Rect переводит область в image.Rectangle
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Center возвращает координаты центра области
func (b Box) Center() (x, y int) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// Area возвращает площадь области в пикселях
func (b Box) Area() int {
	r := b.Rect()
	return r.Dx() * r.Dy()
}

// Finding одна находка детектора
type Finding struct {
	Box        Box     `json:"box"`
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // в диапазоне [0, 1]
}

// FilterByConfidence оставляет находки с уверенностью не ниже порога, порядок сохраняется.
func FilterByConfidence(findings []Finding, threshold float64) []Finding {
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if f.Confidence >= threshold {
			out = append(out, f)
		}
	}
	return out
}
