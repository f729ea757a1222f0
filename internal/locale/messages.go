// Package locale тексты интерфейса на испанском (по умолчанию) и английском.
package locale

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
	"wrist-triage/internal/infrastructure/vision"
)

//go:embed locales/*.toml
var localeFS embed.FS

// DefaultLanguage язык интерфейса клиники
var DefaultLanguage = language.Spanish

// Идентификаторы сообщений
const (
	MsgAppTitle           = "AppTitle"
	MsgAppSubtitle        = "AppSubtitle"
	MsgUploadPrompt       = "UploadPrompt"
	MsgUploadButton       = "UploadButton"
	MsgSensitivityTitle   = "SensitivityTitle"
	MsgThresholdLabel     = "ThresholdLabel"
	MsgViewerTitle        = "ViewerTitle"
	MsgViewerCaption      = "ViewerCaption"
	MsgContrastLabel      = "ContrastLabel"
	MsgBrightnessLabel    = "BrightnessLabel"
	MsgApplyButton        = "ApplyButton"
	MsgAnalyzeButton      = "AnalyzeButton"
	MsgResetButton        = "ResetButton"
	MsgOriginalTitle      = "OriginalTitle"
	MsgResultTitle        = "ResultTitle"
	MsgReady              = "Ready"
	MsgWelcomeTitle       = "WelcomeTitle"
	MsgWelcomeText        = "WelcomeText"
	MsgDisclaimer         = "Disclaimer"
	MsgStatusNormal       = "StatusNormal"
	MsgStatusAlert        = "StatusAlert"
	MsgHighlightTitle     = "HighlightTitle"
	MsgHighlightLine      = "HighlightLine"
	MsgHiddenFindings     = "HiddenFindings"
	MsgErrorNoImage       = "ErrorNoImage"
	MsgErrorInvalidParams = "ErrorInvalidParams"
	MsgErrorDecode        = "ErrorDecode"
	MsgErrorDetector      = "ErrorDetector"
	MsgErrorInternal      = "ErrorInternal"
	MsgImageLoaded        = "ImageLoaded"
	MsgParamsUsage        = "ParamsUsage"
	MsgParamsUpdated      = "ParamsUpdated"
	MsgSessionReset       = "SessionReset"
	MsgUnknownCommand     = "UnknownCommand"
	MsgHelp               = "Help"
)

// uiMessages подписи страницы, отдаются шаблону одним словарём
var uiMessages = []string{
	MsgAppTitle, MsgAppSubtitle, MsgUploadPrompt, MsgUploadButton,
	MsgSensitivityTitle, MsgThresholdLabel, MsgViewerTitle, MsgViewerCaption,
	MsgContrastLabel, MsgBrightnessLabel, MsgApplyButton, MsgAnalyzeButton,
	MsgResetButton, MsgOriginalTitle, MsgResultTitle, MsgReady,
	MsgWelcomeTitle, MsgWelcomeText, MsgDisclaimer,
}

// Messages локализатор для одного языка
type Messages struct {
	lang      string
	localizer *i18n.Localizer
}

// NewBundle загружает встроенные файлы сообщений
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+e.Name()); err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
	}
	return bundle, nil
}

// NewMessages создаёт локализатор; неизвестный язык откатывается к испанскому
func NewMessages(lang string) (*Messages, error) {
	bundle, err := NewBundle()
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = DefaultLanguage.String()
	}
	return &Messages{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang),
	}, nil
}

// Lang код языка интерфейса
func (m *Messages) Lang() string {
	return m.lang
}

// T возвращает сообщение по идентификатору
func (m *Messages) T(id string, data map[string]any) string {
	return m.localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
}

// Plural возвращает сообщение с учётом числа
func (m *Messages) Plural(id string, count int) string {
	return m.localize(&i18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (m *Messages) localize(cfg *i18n.LocalizeConfig) string {
	s, err := m.localizer.Localize(cfg)
	if err != nil {
		log.Printf("i18n: %s: %v", cfg.MessageID, err)
		if s == "" {
			return cfg.MessageID
		}
	}
	return s
}

// UI подписи страницы
func (m *Messages) UI() map[string]string {
	out := make(map[string]string, len(uiMessages))
	for _, id := range uiMessages {
		out[id] = m.T(id, nil)
	}
	return out
}

// Describe строка статуса: NORMAL без находок, ALERT с количеством
func (m *Messages) Describe(report *entity.Report) string {
	if report == nil || report.Status == entity.StatusNormal {
		return m.T(MsgStatusNormal, nil)
	}
	return m.Plural(MsgStatusAlert, report.Count)
}

// Highlight подпись карточки находки
func (m *Messages) Highlight(h entity.Highlight) string {
	return m.T(MsgHighlightLine, map[string]any{
		"Index":   h.Index,
		"Label":   h.Label,
		"Percent": h.Percent,
	})
}

// HighlightTitle заголовок карточки, "Hallazgo 1"
func (m *Messages) HighlightTitle(h entity.Highlight) string {
	return m.T(MsgHighlightTitle, map[string]any{"Index": h.Index})
}

// Hidden строка о находках без карточек, пустая если все показаны
func (m *Messages) Hidden(report *entity.Report) string {
	if report == nil || report.Hidden() <= 0 {
		return ""
	}
	return m.Plural(MsgHiddenFindings, report.Hidden())
}

// Error переводит ошибку сервиса в сообщение пользователю
func (m *Messages) Error(err error) string {
	switch {
	case errors.Is(err, entity.ErrNoImage):
		return m.T(MsgErrorNoImage, nil)
	case errors.Is(err, entity.ErrInvalidParams):
		return m.T(MsgErrorInvalidParams, nil)
	case errors.Is(err, entity.ErrUnsupportedType),
		errors.Is(err, vision.ErrDecode),
		errors.Is(err, vision.ErrEmptyImage):
		return m.T(MsgErrorDecode, nil)
	default:
		return m.T(MsgErrorDetector, map[string]any{"Error": err.Error()})
	}
}

// Проверка реализации интерфейса
var _ port.ReportDescriber = (*Messages)(nil)
