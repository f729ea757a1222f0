package entity

// WindowStats сводка по яркости окна, подсказка при настройке ползунков
type WindowStats struct {
	Bins        []int   `json:"bins"`         // 256 корзин яркости
	ClippedLow  float64 `json:"clipped_low"`  // доля пикселей, ушедших в 0
	ClippedHigh float64 `json:"clipped_high"` // доля пикселей, ушедших в 255
	Peak        int     `json:"peak"`         // самая заполненная корзина
}
