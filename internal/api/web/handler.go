package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"wrist-triage/internal/container"
	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/infrastructure/vision"
	"wrist-triage/internal/locale"
)

const (
	sessionCookie = "triage_session"
	sessionKey    = "session_id"
	cookieMaxAge  = 7 * 24 * 3600
)

// Handler HTTP-обработчики просмотрщика
type Handler struct {
	services *container.Container
	msgs     *locale.Messages
	health   func(ctx context.Context) error
}

// NewHandler создаёт обработчики
func NewHandler(services *container.Container, health func(ctx context.Context) error) *Handler {
	return &Handler{
		services: services,
		msgs:     services.Messages,
		health:   health,
	}
}

// paramsForm значения ползунков из формы или multipart-запроса
type paramsForm struct {
	Contrast   *float64 `form:"contrast" json:"contrast"`
	Brightness *float64 `form:"brightness" json:"brightness"`
	Threshold  *float64 `form:"threshold" json:"threshold"`
}

// apply накладывает заданные поля на base
func (f paramsForm) apply(base entity.DisplayParams) entity.DisplayParams {
	if f.Contrast != nil {
		base.Contrast = *f.Contrast
	}
	if f.Brightness != nil {
		base.Brightness = *f.Brightness
	}
	if f.Threshold != nil {
		base.Threshold = *f.Threshold
	}
	return base
}

// Index страница просмотрщика. Детектор запускается при каждом показе,
// если пользователь запросил анализ.
func (h *Handler) Index(c *gin.Context) {
	h.renderPage(c, http.StatusOK, nil)
}

// Upload принимает снимок и сбрасывает анализ
func (h *Handler) Upload(c *gin.Context) {
	id := h.sessionID(c)

	header, err := c.FormFile("file")
	if err != nil {
		h.renderPage(c, http.StatusBadRequest, fmt.Errorf("%w: no file uploaded", vision.ErrDecode))
		return
	}
	if !allowedUpload(header.Filename) {
		h.renderPage(c, http.StatusBadRequest, fmt.Errorf("%w: %s", entity.ErrUnsupportedType, header.Filename))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.renderPage(c, http.StatusInternalServerError, err)
		return
	}
	defer file.Close()

	if _, err := h.services.SessionService.LoadImage(c.Request.Context(), id, file, header.Filename); err != nil {
		h.renderPage(c, statusFor(err), err)
		return
	}

	log.Printf("session %s: loaded %s (%d bytes)", id, header.Filename, header.Size)
	c.Redirect(http.StatusSeeOther, "/")
}

// Params сохраняет значения ползунков
func (h *Handler) Params(c *gin.Context) {
	id := h.sessionID(c)

	var form paramsForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderPage(c, http.StatusBadRequest, fmt.Errorf("%w: %v", entity.ErrInvalidParams, err))
		return
	}

	session, err := h.services.SessionService.Get(c.Request.Context(), id)
	if err != nil {
		h.renderPage(c, http.StatusInternalServerError, err)
		return
	}

	if _, err := h.services.SessionService.SetParams(c.Request.Context(), id, form.apply(session.Params)); err != nil {
		h.renderPage(c, statusFor(err), err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Analyze единственный переход сессии в analyzed
func (h *Handler) Analyze(c *gin.Context) {
	id := h.sessionID(c)

	if _, err := h.services.SessionService.RequestAnalysis(c.Request.Context(), id); err != nil {
		h.renderPage(c, statusFor(err), err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Reset очищает сессию
func (h *Handler) Reset(c *gin.Context) {
	id := h.sessionID(c)

	if _, err := h.services.SessionService.Reset(c.Request.Context(), id); err != nil {
		h.renderPage(c, statusFor(err), err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// SessionJSON состояние сессии и отчёт без изображения
func (h *Handler) SessionJSON(c *gin.Context) {
	id := h.sessionID(c)

	out, err := h.services.AnalysisService.Render(c.Request.Context(), id)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}

	session := out.Session
	resp := gin.H{
		"id":        session.ID,
		"state":     session.State,
		"params":    session.Params,
		"has_image": session.HasImage(),
		"filename":  session.Filename,
	}
	if out.Windowed != nil {
		resp["stats"] = out.Stats
	}
	if out.Report != nil {
		resp["report"] = out.Report
		resp["status_text"] = h.msgs.Describe(out.Report)
	}

	c.JSON(http.StatusOK, resp)
}

// AnalyzeJSON разовый анализ загруженного файла без сессии
func (h *Handler) AnalyzeJSON(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, errors.New("no file uploaded"))
		return
	}
	if !allowedUpload(header.Filename) {
		respondError(c, http.StatusBadRequest, fmt.Errorf("%w: %s", entity.ErrUnsupportedType, header.Filename))
		return
	}

	var form paramsForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("%w: %v", entity.ErrInvalidParams, err))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	defer file.Close()

	report, err := h.services.AnalysisService.Analyze(c.Request.Context(), file, form.apply(entity.DefaultParams()))
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":      report,
		"status_text": h.msgs.Describe(report),
	})
}

// Health проверка здоровья сервиса
func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			respondError(c, http.StatusServiceUnavailable, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sessionID читает cookie сессии или выдаёт новую, один раз на запрос
func (h *Handler) sessionID(c *gin.Context) string {
	if id := c.GetString(sessionKey); id != "" {
		return id
	}

	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		id = newSessionID()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, cookieMaxAge, "/", "", false, true)
	}

	c.Set(sessionKey, id)
	return id
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("read random: %v", err))
	}
	return hex.EncodeToString(b)
}

func allowedUpload(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// statusFor код ответа для ошибки сервиса
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrNoImage):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInvalidParams),
		errors.Is(err, vision.ErrDecode),
		errors.Is(err, vision.ErrEmptyImage),
		errors.Is(err, entity.ErrUnsupportedType):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
