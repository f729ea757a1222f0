package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wrist-triage/config"
	"wrist-triage/internal/container"
	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/infrastructure/dataset"
	"wrist-triage/internal/infrastructure/trainer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := container.NewTraining(
		dataset.NewYAMLReader(),
		trainer.NewUltralytics(cfg.Training.Binary, trainer.ExecRunner{}),
	)

	run, err := svc.Run(ctx, entity.TrainingJob{
		BaseModel: cfg.Training.BaseModel,
		Dataset:   cfg.Training.Dataset,
		Epochs:    cfg.Training.Epochs,
		ImageSize: cfg.Training.ImageSize,
		Project:   cfg.Training.Project,
		Name:      cfg.Training.Name,
	})
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	log.Printf("Training finished in %s, run %s", run.Duration.Round(time.Second), run.RunDir)
	log.Printf("Checkpoint: %s", run.Checkpoint)
}
