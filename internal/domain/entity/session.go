package entity

import "image"

// AnalysisState состояние анализа текущего снимка
type AnalysisState string

const (
	StateIdle     AnalysisState = "idle"     // Анализ не запрошен
	StateAnalyzed AnalysisState = "analyzed" // Пользователь запросил анализ
)

// Session представляет сессию одного пользователя просмотрщика
type Session struct {
	ID       string        // идентификатор сессии (cookie или чат)
	Image    *image.NRGBA  // нормализованный исходный снимок, не меняется при рендере
	Filename string        // имя загруженного файла
	Params   DisplayParams // текущие значения ползунков
	State    AnalysisState // текущее состояние анализа
}

// NewSession создаёт пустую сессию с начальным состоянием
func NewSession(id string) *Session {
	return &Session{
		ID:     id,
		Params: DefaultParams(),
		State:  StateIdle,
	}
}

// SetState обновляет состояние анализа
func (s *Session) SetState(state AnalysisState) {
	s.State = state
}

// HasImage сообщает, загружен ли снимок
func (s *Session) HasImage() bool {
	return s.Image != nil
}

// LoadImage заменяет снимок и всегда сбрасывает анализ в idle.
func (s *Session) LoadImage(img *image.NRGBA, filename string) {
	s.State = StateIdle
	s.Image = img
	s.Filename = filename
}

// ClearImage убирает снимок после неудачной загрузки, ползунки сохраняются
func (s *Session) ClearImage() {
	s.Image = nil
	s.Filename = ""
	s.State = StateIdle
}

// RequestAnalysis переводит сессию в analyzed по явному действию пользователя.
func (s *Session) RequestAnalysis() error {
	if !s.HasImage() {
		return ErrNoImage
	}
	s.State = StateAnalyzed
	return nil
}

// Analyzed сообщает, нужно ли запускать детектор при рендере
func (s *Session) Analyzed() bool {
	return s.State == StateAnalyzed && s.HasImage()
}

// Reset очищает снимок и возвращает ползунки к значениям по умолчанию
func (s *Session) Reset() {
	s.Image = nil
	s.Filename = ""
	s.Params = DefaultParams()
	s.State = StateIdle
}
