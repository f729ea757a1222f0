package telegram

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

// SessionID идентификатор сессии для чата
func SessionID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// ParseParam меняет один параметр по команде "/contrast 1.5".
// Десятичная запятая тоже принимается.
func ParseParam(command, args string, current entity.DisplayParams) (entity.DisplayParams, error) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return current, fmt.Errorf("%w: %s expects one value", entity.ErrInvalidParams, command)
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil {
		return current, fmt.Errorf("%w: %v", entity.ErrInvalidParams, err)
	}

	next := current
	switch command {
	case "contrast":
		next.Contrast = v
	case "brightness":
		next.Brightness = v
	case "threshold":
		next.Threshold = v
	default:
		return current, fmt.Errorf("%w: unknown parameter %s", entity.ErrInvalidParams, command)
	}

	return next.Normalize()
}

// UsageData данные для подсказки по команде параметра
func UsageData(command string) map[string]any {
	if command == "threshold" {
		return map[string]any{
			"Command": "/" + command,
			"Min":     fmt.Sprintf("%.2f", entity.MinThreshold),
			"Max":     fmt.Sprintf("%.2f", entity.MaxThreshold),
			"Step":    fmt.Sprintf("%.2f", entity.ThresholdStep),
		}
	}
	return map[string]any{
		"Command": "/" + command,
		"Min":     fmt.Sprintf("%.1f", entity.MinWindow),
		"Max":     fmt.Sprintf("%.1f", entity.MaxWindow),
		"Step":    fmt.Sprintf("%.1f", entity.WindowStep),
	}
}

// ReportText подпись к размеченному снимку: статус и карточки находок
func ReportText(d port.ReportDescriber, report *entity.Report) string {
	lines := []string{d.Describe(report)}
	for _, h := range report.Highlights {
		lines = append(lines, d.Highlight(h))
	}
	if hidden := d.Hidden(report); hidden != "" {
		lines = append(lines, hidden)
	}
	return strings.Join(lines, "\n")
}

// IsImageDocument принимает JPEG и PNG, присланные файлом
func IsImageDocument(mimeType, filename string) bool {
	switch mimeType {
	case "image/jpeg", "image/png":
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
