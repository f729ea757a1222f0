package entity

import (
	"fmt"
	"image"
)

// MaxHighlights сколько находок показывается отдельными карточками.
const MaxHighlights = 3

// Status итоговый статус анализа
type Status string

const (
	StatusNormal Status = "normal" // Находок нет
	StatusAlert  Status = "alert"  // Есть хотя бы одна находка
)

// Highlight карточка одной из первых находок
type Highlight struct {
	Index      int     `json:"index"`      // номер находки, с единицы
	Label      string  `json:"label"`      // класс находки
	Confidence float64 `json:"confidence"` // уверенность в [0, 1]
	Percent    string  `json:"percent"`    // уверенность в процентах, "87.3%"
}

// Report результат одного прохода анализа. Не кешируется.
type Report struct {
	Status     Status      `json:"status"`
	Count      int         `json:"count"`
	Findings   []Finding   `json:"findings"`
	Highlights []Highlight `json:"highlights"`
	Threshold  float64     `json:"threshold"`
	Annotated  image.Image `json:"-"` // снимок с рамками находок
}

// NewReport собирает отчёт по уже отфильтрованным находкам.
func NewReport(findings []Finding, threshold float64, annotated image.Image) *Report {
	if findings == nil {
		findings = []Finding{}
	}

	report := &Report{
		Status:     StatusNormal,
		Count:      len(findings),
		Findings:   findings,
		Highlights: make([]Highlight, 0, MaxHighlights),
		Threshold:  threshold,
		Annotated:  annotated,
	}
	if report.Count > 0 {
		report.Status = StatusAlert
	}

	for i, f := range findings {
		if i >= MaxHighlights {
			break
		}
		report.Highlights = append(report.Highlights, Highlight{
			Index:      i + 1,
			Label:      f.Label,
			Confidence: f.Confidence,
			Percent:    FormatPercent(f.Confidence),
		})
	}

	return report
}

// Hidden сколько находок посчитано, но не показано карточками
func (r *Report) Hidden() int {
	return r.Count - len(r.Highlights)
}

// FormatPercent форматирует уверенность с одним знаком после запятой.
func FormatPercent(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}
