package web

import (
	"html/template"
	"image"
	"log"

	"github.com/gin-gonic/gin"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/infrastructure/vision"
)

// card карточка находки на странице
type card struct {
	Title   string
	Label   string
	Percent string
}

// pageView данные шаблона index.html
type pageView struct {
	Lang     string
	UI       map[string]string
	Error    string
	Params   entity.DisplayParams
	Limits   limits
	HasImage bool
	Filename string
	Analyzed bool
	Original template.URL // data: URI снимка после окна
	Result   template.URL // data: URI размеченного снимка
	Alert    bool
	Status   string
	Cards    []card
	Hidden   string
	ClipLow  string
	ClipHigh string
}

type limits struct {
	MinThreshold, MaxThreshold, ThresholdStep float64
	MinWindow, MaxWindow, WindowStep          float64
}

var sliderLimits = limits{
	MinThreshold:  entity.MinThreshold,
	MaxThreshold:  entity.MaxThreshold,
	ThresholdStep: entity.ThresholdStep,
	MinWindow:     entity.MinWindow,
	MaxWindow:     entity.MaxWindow,
	WindowStep:    entity.WindowStep,
}

// renderPage показывает страницу сессии, при ошибке с баннером и кодом status
func (h *Handler) renderPage(c *gin.Context, status int, pageErr error) {
	view := pageView{
		Lang:   h.msgs.Lang(),
		UI:     h.msgs.UI(),
		Params: entity.DefaultParams(),
		Limits: sliderLimits,
	}
	if pageErr != nil {
		view.Error = h.msgs.Error(pageErr)
	}

	id := h.sessionID(c)
	out, err := h.services.AnalysisService.Render(c.Request.Context(), id)
	if err != nil {
		// Ошибку детектора показываем баннером, страница остаётся рабочей
		log.Printf("render: %v", err)
		view.Error = h.msgs.Error(err)
		if status < 400 {
			status = statusFor(err)
		}
		if session, serr := h.services.SessionService.Get(c.Request.Context(), id); serr == nil {
			view.Params = session.Params
			view.HasImage = session.HasImage()
			view.Filename = session.Filename
		}
		c.HTML(status, "index.html", view)
		return
	}

	session := out.Session
	view.Params = session.Params
	view.HasImage = session.HasImage()
	view.Filename = session.Filename
	view.Analyzed = session.Analyzed()

	if out.Windowed != nil {
		view.Original = dataURI(out.Windowed)
		view.ClipLow = entity.FormatPercent(out.Stats.ClippedLow)
		view.ClipHigh = entity.FormatPercent(out.Stats.ClippedHigh)
	}

	if report := out.Report; report != nil {
		view.Result = dataURI(report.Annotated)
		view.Alert = report.Status == entity.StatusAlert
		view.Status = h.msgs.Describe(report)
		view.Hidden = h.msgs.Hidden(report)
		for _, hl := range report.Highlights {
			view.Cards = append(view.Cards, card{
				Title:   h.msgs.HighlightTitle(hl),
				Label:   hl.Label,
				Percent: hl.Percent,
			})
		}
	}

	c.HTML(status, "index.html", view)
}

// dataURI встраивает снимок в страницу, детектор не перезапускается ради картинки
func dataURI(img image.Image) template.URL {
	uri, err := vision.DataURI(img)
	if err != nil {
		log.Printf("encode image: %v", err)
		return ""
	}
	return template.URL(uri)
}
