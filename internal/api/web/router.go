package web

import (
	"context"
	"embed"
	"html/template"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"wrist-triage/internal/container"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Options параметры веб-интерфейса
type Options struct {
	StaticDir string                          // каталог с css, пустой отключает статику
	Health    func(ctx context.Context) error // проверка детектора для /health, может быть nil
}

// NewRouter собирает gin-движок со всеми маршрутами
func NewRouter(services *container.Container, opts Options) *gin.Engine {
	h := NewHandler(services, opts.Health)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = 32 << 20

	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	if opts.StaticDir != "" {
		r.Use(static.Serve("/static", static.LocalFile(opts.StaticDir, false)))
	}

	r.GET("/", h.Index)
	r.POST("/upload", h.Upload)
	r.POST("/params", h.Params)
	r.POST("/analyze", h.Analyze)
	r.POST("/reset", h.Reset)

	api := r.Group("/api")
	api.GET("/session", h.SessionJSON)
	api.POST("/analyze", h.AnalyzeJSON)

	r.GET("/health", h.Health)

	return r
}
