package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"wrist-triage/internal/container"
	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/infrastructure/storage"
	"wrist-triage/internal/infrastructure/vision"
	"wrist-triage/internal/locale"
)

type fakeDetector struct {
	mu       sync.Mutex
	findings []entity.Finding
	err      error
	calls    int
}

func (f *fakeDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.Finding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]entity.Finding(nil), f.findings...), nil
}

func (f *fakeDetector) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// client держит cookie сессии между запросами
type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newClient(t *testing.T, det *fakeDetector, health func(context.Context) error) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	msgs, err := locale.NewMessages("es")
	require.NoError(t, err)
	annotator, err := vision.NewBoxAnnotator(2, nil)
	require.NoError(t, err)

	services := container.New(storage.NewMemorySessionRepository(), vision.NewProcessor(), det, annotator, msgs)
	return &client{t: t, router: NewRouter(services, Options{Health: health})}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postFile(path, filename string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func (c *client) session() map[string]any {
	rec := c.get("/api/session")
	require.Equal(c.t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func radiograph(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, 48, 32))
	for i := 0; i < len(img.Pix); i += 2 {
		img.Pix[i] = byte(i % 200)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func twoFindings() []entity.Finding {
	return []entity.Finding{
		{Box: entity.Box{X1: 2, Y1: 2, X2: 20, Y2: 20}, ClassID: 3, Label: "fracture", Confidence: 0.87},
		{Box: entity.Box{X1: 25, Y1: 5, X2: 40, Y2: 30}, ClassID: 8, Label: "text", Confidence: 0.3},
	}
}

func TestIndex_Welcome(t *testing.T) {
	c := newClient(t, &fakeDetector{}, nil)

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Bienvenido al Sistema de Triaje de IA")
	require.NotNil(t, c.cookie)
	require.Len(t, c.cookie.Value, 32)
}

func TestViewerFlow(t *testing.T) {
	det := &fakeDetector{findings: twoFindings()}
	c := newClient(t, det, nil)

	rec := c.postFile("/upload", "wrist.png", radiograph(t), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	s := c.session()
	require.Equal(t, true, s["has_image"])
	require.Equal(t, "idle", s["state"])
	require.Nil(t, s["report"])

	rec = c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "data:image/png;base64,")
	require.Contains(t, rec.Body.String(), "El sistema está listo")
	require.Equal(t, 0, det.Calls())

	rec = c.postForm("/analyze", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	s = c.session()
	require.Equal(t, "analyzed", s["state"])
	report := s["report"].(map[string]any)
	require.Equal(t, "alert", report["status"])
	require.EqualValues(t, 2, report["count"])
	require.Equal(t, "ALERTA: Se han detectado 2 posibles fracturas.", s["status_text"])
	require.Equal(t, 1, det.Calls())

	rec = c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Hallazgo 1")
	require.Contains(t, rec.Body.String(), "87.0%")
	require.Equal(t, 2, det.Calls())

	// ползунки не сбрасывают анализ, порог отсекает вторую находку
	rec = c.postForm("/params", url.Values{"threshold": {"0.5"}, "contrast": {"1.2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	s = c.session()
	require.Equal(t, "analyzed", s["state"])
	require.EqualValues(t, 1, s["report"].(map[string]any)["count"])
	params := s["params"].(map[string]any)
	require.InDelta(t, 1.2, params["contrast"], 1e-9)
	require.InDelta(t, 1.0, params["brightness"], 1e-9)

	// новый снимок возвращает в idle
	rec = c.postFile("/upload", "other.png", radiograph(t), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "idle", c.session()["state"])

	rec = c.postForm("/reset", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, false, c.session()["has_image"])
}

func TestUploadErrors(t *testing.T) {
	c := newClient(t, &fakeDetector{}, nil)

	rec := c.postFile("/upload", "scan.gif", radiograph(t), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "No se pudo leer la imagen.")

	rec = c.postFile("/upload", "broken.png", []byte("garbage"), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.postForm("/analyze", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "Primero cargue una radiografía.")
}

func TestCorruptUploadAfterAnalysis(t *testing.T) {
	det := &fakeDetector{findings: twoFindings()}
	c := newClient(t, det, nil)

	require.Equal(t, http.StatusSeeOther, c.postFile("/upload", "wrist.png", radiograph(t), nil).Code)
	require.Equal(t, http.StatusSeeOther, c.postForm("/analyze", nil).Code)
	require.Equal(t, "analyzed", c.session()["state"])
	calls := det.Calls()

	rec := c.postFile("/upload", "corrupt.png", []byte("garbage"), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotContains(t, rec.Body.String(), "Hallazgo 1")

	s := c.session()
	require.Equal(t, "idle", s["state"])
	require.Equal(t, false, s["has_image"])
	require.Nil(t, s["report"])
	require.Equal(t, calls, det.Calls())
}

func TestParamsOutOfRange(t *testing.T) {
	c := newClient(t, &fakeDetector{}, nil)

	rec := c.postForm("/params", url.Values{"contrast": {"4.0"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.postForm("/params", url.Values{"threshold": {"abc"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	params := c.session()["params"].(map[string]any)
	require.InDelta(t, 1.0, params["contrast"], 1e-9)
	require.InDelta(t, 0.25, params["threshold"], 1e-9)
}

func TestDetectorErrorShownAsBanner(t *testing.T) {
	c := newClient(t, &fakeDetector{err: errors.New("model crashed")}, nil)

	require.Equal(t, http.StatusSeeOther, c.postFile("/upload", "wrist.png", radiograph(t), nil).Code)
	require.Equal(t, http.StatusSeeOther, c.postForm("/analyze", nil).Code)

	rec := c.get("/")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "model crashed")

	rec = c.get("/api/session")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), `"error"`)
}

func TestAnalyzeJSON(t *testing.T) {
	det := &fakeDetector{findings: twoFindings()}
	c := newClient(t, det, nil)

	rec := c.postFile("/api/analyze", "wrist.png", radiograph(t), map[string]string{"threshold": "0.5"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Report     entity.Report `json:"report"`
		StatusText string        `json:"status_text"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, entity.StatusAlert, out.Report.Status)
	require.Equal(t, 1, out.Report.Count)
	require.Equal(t, "87.0%", out.Report.Highlights[0].Percent)
	require.Equal(t, "ALERTA: Se ha detectado 1 posible fractura.", out.StatusText)

	rec = c.postFile("/api/analyze", "wrist.png", radiograph(t), map[string]string{"threshold": "0.95"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	det.findings = nil
	rec = c.postFile("/api/analyze", "wrist.png", radiograph(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, entity.StatusNormal, out.Report.Status)
	require.Empty(t, out.Report.Highlights)
}

func TestHealth(t *testing.T) {
	rec := newClient(t, &fakeDetector{}, nil).get("/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	failing := func(context.Context) error { return errors.New("ml service unhealthy: 503") }
	rec = newClient(t, &fakeDetector{}, failing).get("/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	require.Contains(t, string(body), "unhealthy")
}
