package port

import (
	"context"

	"wrist-triage/internal/domain/entity"
)

// SessionRepository интерфейс хранилища сессий
type SessionRepository interface {
	// Get возвращает сессию по ID, создаёт новую если не найдена
	Get(ctx context.Context, id string) (*entity.Session, error)

	// Save сохраняет сессию
	Save(ctx context.Context, session *entity.Session) error

	// Update применяет fn к сессии атомарно и сохраняет результат.
	// Если fn вернула ошибку, сессия не меняется.
	Update(ctx context.Context, id string, fn func(*entity.Session) error) (*entity.Session, error)

	// Delete удаляет сессию
	Delete(ctx context.Context, id string) error
}
