package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

type TrainingService struct {
	datasets port.DatasetReader
	trainer  port.Trainer
}

func NewTrainingService(datasets port.DatasetReader, trainer port.Trainer) *TrainingService {
	return &TrainingService{datasets: datasets, trainer: trainer}
}

// Run проверяет описание датасета, запускает обучение и ищет веса best.pt.
func (s *TrainingService) Run(ctx context.Context, job entity.TrainingJob) (*entity.TrainingRun, error) {
	job = job.WithDefaults()

	desc, err := s.datasets.ReadDataset(job.Dataset)
	if err != nil {
		return nil, err
	}
	log.Printf("dataset %s: %d classes, train=%s val=%s", job.Dataset, len(desc.Names), desc.Train, desc.Val)

	started := time.Now()
	runDir, err := s.trainer.Train(ctx, job)
	if err != nil {
		return nil, err
	}

	checkpoint := filepath.Join(runDir, "weights", "best.pt")
	if _, err := os.Stat(checkpoint); err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrNoCheckpoint, checkpoint)
	}

	return &entity.TrainingRun{
		Job:        job,
		Dataset:    *desc,
		RunDir:     runDir,
		Checkpoint: checkpoint,
		Duration:   time.Since(started),
	}, nil
}
