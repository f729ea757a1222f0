package storage

import (
	"context"
	"sync"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*entity.Session),
	}
}

// Get возвращает копию сессии по ID, создаёт новую если не найдена.
// Снимок внутри сессии разделяется между копиями, он неизменяемый.
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.RLock()
	session, exists := r.sessions[id]
	r.mu.RUnlock()

	if exists {
		cp := *session
		return &cp, nil
	}

	// Создаём новую сессию
	newSession := entity.NewSession(id)

	r.mu.Lock()
	if existing, ok := r.sessions[id]; ok {
		newSession = existing
	} else {
		r.sessions[id] = newSession
	}
	cp := *newSession
	r.mu.Unlock()

	return &cp, nil
}

// Save сохраняет копию сессии
func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.Session) error {
	cp := *session

	r.mu.Lock()
	r.sessions[session.ID] = &cp
	r.mu.Unlock()

	return nil
}

// Update выполняет fn над копией сессии под блокировкой записи
func (r *MemorySessionRepository) Update(ctx context.Context, id string, fn func(*entity.Session) error) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[id]
	if !ok {
		current = entity.NewSession(id)
	}

	cp := *current
	if err := fn(&cp); err != nil {
		return nil, err
	}

	stored := cp
	r.sessions[id] = &stored
	return &cp, nil
}

// Delete удаляет сессию, отсутствие сессии не ошибка
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	return nil
}

// Len возвращает число сессий
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
