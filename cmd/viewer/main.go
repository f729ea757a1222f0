package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wrist-triage/config"
	"wrist-triage/internal/api/telegram"
	"wrist-triage/internal/api/web"
	"wrist-triage/internal/container"
	"wrist-triage/internal/domain/port"
	"wrist-triage/internal/infrastructure/detector"
	"wrist-triage/internal/infrastructure/storage"
	"wrist-triage/internal/infrastructure/vision"
	"wrist-triage/internal/locale"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, func() (port.Detector, error) {
		return detector.Open(detector.Settings{
			Backend:      cfg.Detector.Backend,
			ModelPath:    cfg.Detector.ModelPath,
			LabelsPath:   cfg.Detector.LabelsPath,
			InferenceURL: cfg.Detector.InferenceURL,
			WSURL:        cfg.Detector.WSURL,
			InputSize:    cfg.Detector.InputSize,
			IoU:          cfg.Detector.IoU,
			Timeout:      cfg.Detector.Timeout,
		})
	})
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

// run поднимает сервисы и блокируется до остановки сервера.
// Детектор закрывается на любом пути выхода.
func run(ctx context.Context, cfg *config.Config, open detector.OpenFunc) error {
	// Модель загружается один раз на процесс, без неё работать нельзя
	handle := detector.NewHandle(open)
	det, err := handle.Get()
	if err != nil {
		return fmt.Errorf("load detector model: %w", err)
	}
	defer func() {
		if err := handle.Close(); err != nil {
			log.Printf("Detector close: %v", err)
		}
	}()

	annotator, err := vision.NewBoxAnnotator(2, nil)
	if err != nil {
		return fmt.Errorf("create annotator: %w", err)
	}

	msgs, err := locale.NewMessages(cfg.Lang)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	// Собираем сервисы приложения
	appContainer := container.New(storage.NewMemorySessionRepository(), vision.NewProcessor(), det, annotator, msgs)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		go func() {
			log.Println("Bot is running...")
			if err := bot.Run(ctx); err != nil {
				log.Printf("Bot error: %v", err)
			}
		}()
	}

	var health func(context.Context) error
	if hc, ok := det.(interface{ CheckHealth(context.Context) error }); ok {
		health = hc.CheckHealth
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: web.NewRouter(appContainer, web.Options{StaticDir: cfg.StaticDir, Health: health}),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	log.Printf("Viewer is listening on %s (detector: %s)", cfg.HTTPAddr, cfg.Detector.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
