package app

import (
	"context"
	"io"
	"log"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

type SessionService struct {
	repo   port.SessionRepository
	images port.ImageProcessor
}

func NewSessionService(repo port.SessionRepository, images port.ImageProcessor) *SessionService {
	return &SessionService{repo: repo, images: images}
}

func (s *SessionService) Get(ctx context.Context, id string) (*entity.Session, error) {
	return s.repo.Get(ctx, id)
}

// update применяет изменение к сессии атомарно в хранилище
func (s *SessionService) update(ctx context.Context, id string, fn func(*entity.Session) error) (*entity.Session, error) {
	return s.repo.Update(ctx, id, fn)
}

// LoadImage декодирует и нормализует снимок. Любая попытка загрузки сбрасывает анализ,
// при ошибке декодирования прежний снимок тоже убирается.
func (s *SessionService) LoadImage(ctx context.Context, id string, r io.Reader, filename string) (*entity.Session, error) {
	img, err := s.images.Decode(r)
	if err != nil {
		if _, clearErr := s.update(ctx, id, func(session *entity.Session) error {
			session.ClearImage()
			return nil
		}); clearErr != nil {
			log.Printf("session %s: clear after failed upload: %v", id, clearErr)
		}
		return nil, err
	}

	return s.update(ctx, id, func(session *entity.Session) error {
		session.LoadImage(img, filename)
		return nil
	})
}

// SetParams проверяет и сохраняет значения ползунков, состояние анализа не меняется
func (s *SessionService) SetParams(ctx context.Context, id string, params entity.DisplayParams) (*entity.Session, error) {
	normalized, err := params.Normalize()
	if err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(session *entity.Session) error {
		session.Params = normalized
		return nil
	})
}

// RequestAnalysis единственный путь в состояние analyzed
func (s *SessionService) RequestAnalysis(ctx context.Context, id string) (*entity.Session, error) {
	return s.update(ctx, id, func(session *entity.Session) error {
		return session.RequestAnalysis()
	})
}

func (s *SessionService) Reset(ctx context.Context, id string) (*entity.Session, error) {
	return s.update(ctx, id, func(session *entity.Session) error {
		session.Reset()
		return nil
	})
}
