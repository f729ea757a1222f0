package entity

import (
	"fmt"
	"math"
)

// Границы ползунков интерфейса.
const (
	MinThreshold  = 0.10
	MaxThreshold  = 0.90
	ThresholdStep = 0.05

	MinWindow  = 0.5
	MaxWindow  = 3.0
	WindowStep = 0.1

	DefaultThreshold  = 0.25
	DefaultContrast   = 1.0
	DefaultBrightness = 1.0
)

// DisplayParams параметры отображения, которые пользователь меняет ползунками
type DisplayParams struct {
	Contrast   float64 `json:"contrast"`   // множитель контраста, 1.0 без изменений
	Brightness float64 `json:"brightness"` // множитель яркости, 1.0 без изменений
	Threshold  float64 `json:"threshold"`  // минимальная уверенность находки
}

// DefaultParams возвращает начальные значения ползунков
func DefaultParams() DisplayParams {
	return DisplayParams{
		Contrast:   DefaultContrast,
		Brightness: DefaultBrightness,
		Threshold:  DefaultThreshold,
	}
}

// Normalize привязывает значения к шагу ползунков и проверяет диапазоны.
func (p DisplayParams) Normalize() (DisplayParams, error) {
	out := DisplayParams{
		Contrast:   snap(p.Contrast, WindowStep),
		Brightness: snap(p.Brightness, WindowStep),
		Threshold:  snap(p.Threshold, ThresholdStep),
	}

	if !inRange(out.Contrast, MinWindow, MaxWindow) {
		return p, fmt.Errorf("%w: contrast %.2f outside [%.1f, %.1f]", ErrInvalidParams, p.Contrast, MinWindow, MaxWindow)
	}
	if !inRange(out.Brightness, MinWindow, MaxWindow) {
		return p, fmt.Errorf("%w: brightness %.2f outside [%.1f, %.1f]", ErrInvalidParams, p.Brightness, MinWindow, MaxWindow)
	}
	if !inRange(out.Threshold, MinThreshold, MaxThreshold) {
		return p, fmt.Errorf("%w: threshold %.2f outside [%.2f, %.2f]", ErrInvalidParams, p.Threshold, MinThreshold, MaxThreshold)
	}

	return out, nil
}

// snap округляет v до ближайшего кратного step с точностью до сотых.
func snap(v, step float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(math.Round(v/step)*step*100) / 100
}

func inRange(v, lo, hi float64) bool {
	return v >= lo-1e-9 && v <= hi+1e-9
}
