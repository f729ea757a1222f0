package port

import (
	"context"

	"wrist-triage/internal/domain/entity"
)

// Trainer интерфейс внешней библиотеки обучения
type Trainer interface {
	// Train запускает обучение и возвращает каталог запуска
	Train(ctx context.Context, job entity.TrainingJob) (runDir string, err error)
}

// DatasetReader интерфейс чтения описания датасета
type DatasetReader interface {
	// ReadDataset разбирает и проверяет data.yaml
	ReadDataset(path string) (*entity.DatasetDescriptor, error)
}
