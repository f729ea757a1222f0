package telegram

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"wrist-triage/internal/container"
	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/infrastructure/vision"
	"wrist-triage/internal/locale"
)

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	services *container.Container
	msgs     *locale.Messages
}

// NewBot создаёт нового бота
func NewBot(token string, services *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:      api,
		services: services,
		msgs:     services.Messages,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, msg.Chat.ID, photo.FileID, "photo.jpg")
		return
	}

	// Снимок, отправленный файлом, приходит без пережатия
	if msg.Document != nil && IsImageDocument(msg.Document.MimeType, msg.Document.FileName) {
		b.handleImage(ctx, msg.Chat.ID, msg.Document.FileID, msg.Document.FileName)
		return
	}

	b.sendMessage(msg.Chat.ID, b.msgs.T(locale.MsgHelp, nil))
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	id := SessionID(chatID)

	switch msg.Command() {
	case "start", "help":
		b.sendMessage(chatID, b.msgs.T(locale.MsgHelp, nil))

	case "analyze":
		if _, err := b.services.SessionService.RequestAnalysis(ctx, id); err != nil {
			b.sendError(chatID, err)
			return
		}
		b.sendRender(ctx, chatID)

	case "contrast", "brightness", "threshold":
		session, err := b.services.SessionService.Get(ctx, id)
		if err != nil {
			b.sendError(chatID, err)
			return
		}

		params, err := ParseParam(msg.Command(), msg.CommandArguments(), session.Params)
		if err != nil {
			b.sendMessage(chatID, b.msgs.T(locale.MsgParamsUsage, UsageData(msg.Command())))
			return
		}

		session, err = b.services.SessionService.SetParams(ctx, id, params)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		b.sendMessage(chatID, b.msgs.T(locale.MsgParamsUpdated, map[string]any{
			"Contrast":   fmt.Sprintf("%.1f", session.Params.Contrast),
			"Brightness": fmt.Sprintf("%.1f", session.Params.Brightness),
			"Threshold":  fmt.Sprintf("%.2f", session.Params.Threshold),
		}))
		if session.HasImage() {
			b.sendRender(ctx, chatID)
		}

	case "reset":
		if _, err := b.services.SessionService.Reset(ctx, id); err != nil {
			b.sendError(chatID, err)
			return
		}
		b.sendMessage(chatID, b.msgs.T(locale.MsgSessionReset, nil))

	default:
		b.sendMessage(chatID, b.msgs.T(locale.MsgUnknownCommand, nil))
	}
}

// handleImage загружает снимок в сессию чата и показывает превью
func (b *Bot) handleImage(ctx context.Context, chatID int64, fileID, filename string) {
	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendError(chatID, err)
		return
	}

	log.Printf("Received image: %d bytes", len(imageData))

	session, err := b.services.SessionService.LoadImage(ctx, SessionID(chatID), bytes.NewReader(imageData), filename)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	bounds := session.Image.Bounds()
	b.sendMessage(chatID, b.msgs.T(locale.MsgImageLoaded, map[string]any{
		"Width":  bounds.Dx(),
		"Height": bounds.Dy(),
	}))
	b.sendRender(ctx, chatID)
}

// sendRender отправляет текущий снимок: превью в idle, разметку и отчёт после анализа
func (b *Bot) sendRender(ctx context.Context, chatID int64) {
	out, err := b.services.AnalysisService.Render(ctx, SessionID(chatID))
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if out.Windowed == nil {
		b.sendError(chatID, entity.ErrNoImage)
		return
	}

	if out.Report == nil {
		b.sendPhoto(chatID, out.Windowed, b.msgs.T(locale.MsgReady, nil))
		return
	}

	b.sendPhoto(chatID, out.Report.Annotated, ReportText(b.msgs, out.Report))
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// sendPhoto отправляет изображение JPEG с подписью
func (b *Bot) sendPhoto(chatID int64, img image.Image, caption string) {
	data, err := vision.EncodeJPEG(img)
	if err != nil {
		log.Printf("Error encoding photo: %v", err)
		b.sendMessage(chatID, caption)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "radiograph.jpg", Bytes: data})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending photo: %v", err)
	}
}

func (b *Bot) sendError(chatID int64, err error) {
	log.Printf("chat %d: %v", chatID, err)
	b.sendMessage(chatID, b.msgs.Error(err))
}
