package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
	"wrist-triage/internal/infrastructure/vision"
)

// wsRequest заголовок запроса, отправляется текстовым кадром перед снимком
type wsRequest struct {
	Conf   float64 `json:"conf"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// WSResult находка в ответе сервера детекции
type WSResult struct {
	Label      string    `json:"label"`
	ClassID    int       `json:"class_id"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box"` // y1, x1, y2, x2 в долях изображения
}

// WSDetector держит одно websocket-соединение с сервером детекции.
// Запрос: текстовый кадр wsRequest, затем бинарный кадр PNG.
// Ответ: текстовый кадр с JSON-массивом WSResult.
type WSDetector struct {
	serverURL string
	dialer    *websocket.Dialer
	timeout   time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSDetector создаёт клиента, соединение поднимается при первом запросе
func NewWSDetector(serverURL string, timeout time.Duration) *WSDetector {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WSDetector{
		serverURL: serverURL,
		dialer:    websocket.DefaultDialer,
		timeout:   timeout,
	}
}

// Detect отправляет снимок и ждёт ответ на том же соединении
func (d *WSDetector) Detect(ctx context.Context, img image.Image, threshold float64) ([]entity.Finding, error) {
	png, err := vision.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()

	d.mu.Lock()
	defer d.mu.Unlock()

	conn, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(d.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.SetReadDeadline(deadline)

	header := wsRequest{Conf: threshold, Width: bounds.Dx(), Height: bounds.Dy()}
	if err := conn.WriteJSON(header); err != nil {
		d.drop()
		return nil, fmt.Errorf("write request header: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, png); err != nil {
		d.drop()
		return nil, fmt.Errorf("write image: %w", err)
	}

	_, message, err := conn.ReadMessage()
	if err != nil {
		d.drop()
		return nil, fmt.Errorf("read response: %w", err)
	}

	var results []WSResult
	if err := json.Unmarshal(message, &results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	findings := make([]entity.Finding, 0, len(results))
	for _, res := range results {
		if len(res.Box) != 4 {
			continue
		}
		findings = append(findings, entity.Finding{
			Box: entity.Box{
				X1: int(res.Box[1] * w),
				Y1: int(res.Box[0] * h),
				X2: int(res.Box[3] * w),
				Y2: int(res.Box[2] * h),
			},
			ClassID:    res.ClassID,
			Label:      res.Label,
			Confidence: res.Confidence,
		})
	}

	findings = entity.FilterByConfidence(findings, threshold)
	vision.SortByConfidence(findings)
	return findings, nil
}

// connect поднимает соединение, если его нет. Вызывается под mu.
func (d *WSDetector) connect(ctx context.Context) (*websocket.Conn, error) {
	if d.conn != nil {
		return d.conn, nil
	}

	log.Println("connecting to detector server...", d.serverURL)
	conn, _, err := d.dialer.DialContext(ctx, d.serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial detector server: %w", err)
	}
	log.Println("connected to detection server")

	d.conn = conn
	return conn, nil
}

// drop закрывает сломанное соединение, следующий запрос переподключится
func (d *WSDetector) drop() {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
}

// Close закрывает соединение
func (d *WSDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	_ = d.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := d.conn.Close()
	d.conn = nil
	return err
}

// Проверка реализации интерфейса
var _ port.Detector = (*WSDetector)(nil)
