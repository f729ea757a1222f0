package detector

import (
	"sync"

	"wrist-triage/internal/domain/port"
)

// OpenFunc открывает бэкенд детектора
type OpenFunc func() (port.Detector, error)

// Handle общий на процесс детектор: открывается один раз при первом обращении,
// дальше все получают тот же экземпляр.
type Handle struct {
	open OpenFunc

	once     sync.Once
	detector port.Detector
	err      error
}

// NewHandle создаёт ленивый хэндл
func NewHandle(open OpenFunc) *Handle {
	return &Handle{open: open}
}

// Get возвращает детектор, при необходимости открывая его.
// Ошибка открытия запоминается и возвращается всем последующим вызовам.
func (h *Handle) Get() (port.Detector, error) {
	h.once.Do(func() {
		h.detector, h.err = h.open()
	})
	return h.detector, h.err
}

// Close освобождает бэкенд, если он был открыт и умеет закрываться
func (h *Handle) Close() error {
	d, err := h.Get()
	if err != nil || d == nil {
		return nil
	}
	if c, ok := d.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
