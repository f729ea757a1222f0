package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
	"wrist-triage/internal/infrastructure/vision"
)

// BoundingBox находка в ответе сервиса инференса
type BoundingBox struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Class   string  `json:"class"`
	ClassID int     `json:"class_id"`
	Conf    float64 `json:"confidence"`
}

// HTTPDetector отправляет снимок во внешний сервис инференса
type HTTPDetector struct {
	inferenceURL string // URL сервиса с моделью
	client       *http.Client
}

// NewHTTPDetector создаёт адаптер к сервису инференса
func NewHTTPDetector(inferenceURL string, timeout time.Duration) *HTTPDetector {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPDetector{
		inferenceURL: inferenceURL,
		client:       &http.Client{Timeout: timeout},
	}
}

// Detect выполняет inference через внешний сервис
func (d *HTTPDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.Finding, error) {
	png, err := vision.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	// Создаём multipart запрос
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.WriteField("conf", strconv.FormatFloat(threshold, 'f', 2, 64)); err != nil {
		return nil, fmt.Errorf("write conf field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.inferenceURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	// Парсим результат
	var result struct {
		Detections []BoundingBox `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	findings := make([]entity.Finding, 0, len(result.Detections))
	for _, det := range result.Detections {
		findings = append(findings, entity.Finding{
			Box: entity.Box{
				X1: det.X,
				Y1: det.Y,
				X2: det.X + det.Width,
				Y2: det.Y + det.Height,
			},
			ClassID:    det.ClassID,
			Label:      det.Class,
			Confidence: det.Conf,
		})
	}

	findings = entity.FilterByConfidence(findings, threshold)
	vision.SortByConfidence(findings)
	return findings, nil
}

// CheckHealth проверяет доступность сервиса инференса
func (d *HTTPDetector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL(d.inferenceURL), nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

// healthURL строит адрес проверки рядом с эндпоинтом предсказания:
// http://host/predict → http://host/health.
func healthURL(inferenceURL string) string {
	u, err := url.Parse(inferenceURL)
	if err != nil {
		return strings.TrimSuffix(inferenceURL, "/") + "/health"
	}

	dir := path.Dir(strings.TrimSuffix(u.Path, "/"))
	if dir == "." {
		dir = "/"
	}
	u.Path = path.Join(dir, "health")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Проверка реализации интерфейса
var _ port.Detector = (*HTTPDetector)(nil)
