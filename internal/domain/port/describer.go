package port

import "wrist-triage/internal/domain/entity"

// ReportDescriber интерфейс текстового описания результата анализа
type ReportDescriber interface {
	// Describe возвращает строку статуса для пользователя
	Describe(report *entity.Report) string
	// Highlight возвращает подпись карточки находки
	Highlight(h entity.Highlight) string
	// Hidden возвращает строку о находках без карточек или пустую строку
	Hidden(report *entity.Report) string
}
