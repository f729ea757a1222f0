package container

import (
	app "wrist-triage/internal/application"
	"wrist-triage/internal/domain/port"
	"wrist-triage/internal/locale"
)

type Container struct {
	SessionService  *app.SessionService
	AnalysisService *app.AnalysisService
	Messages        *locale.Messages
}

func New(sessionRepo port.SessionRepository, images port.ImageProcessor, detector port.Detector, annotator port.Annotator, messages *locale.Messages) *Container {
	sessionService := app.NewSessionService(sessionRepo, images)
	analysisService := app.NewAnalysisService(sessionService, images, detector, annotator)

	return &Container{
		SessionService:  sessionService,
		AnalysisService: analysisService,
		Messages:        messages,
	}
}

// NewTraining собирает сервис дообучения для отдельного бинарника
func NewTraining(datasets port.DatasetReader, trainer port.Trainer) *app.TrainingService {
	return app.NewTrainingService(datasets, trainer)
}
