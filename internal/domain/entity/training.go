package entity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidDataset описание датасета не прошло проверку
	ErrInvalidDataset = errors.New("invalid dataset descriptor")
	// ErrNoCheckpoint после обучения не найден файл весов
	ErrNoCheckpoint = errors.New("trained checkpoint not found")
)

// TrainingJob параметры одного запуска дообучения
type TrainingJob struct {
	BaseModel string // исходный чекпоинт, например yolov8n.pt
	Dataset   string // путь к data.yaml
	Epochs    int    // число эпох
	ImageSize int    // размер входа модели
	Project   string // каталог для результатов
	Name      string // имя запуска внутри Project
}

// DatasetDescriptor содержимое data.yaml, нужное для проверки
type DatasetDescriptor struct {
	Root  string   // path
	Train string   // train
	Val   string   // val
	Test  string   // test, необязательный
	Names []string // имена классов по порядку
}

// TrainingRun итог запуска
type TrainingRun struct {
	Job        TrainingJob
	Dataset    DatasetDescriptor // проверенное описание датасета
	RunDir     string            // каталог запуска, созданный тренером
	Checkpoint string            // путь к weights/best.pt
	Duration   time.Duration     // длительность обучения
}

// Значения по умолчанию для дообучения на GRAZPEDWRI-DX
const (
	DefaultBaseModel  = "yolov8n.pt"
	DefaultDataset    = "data/raw/GRAZPEDWRI-DX/data.yaml"
	DefaultEpochs     = 10
	DefaultTrainImgSz = 640
	DefaultProject    = "reports"
	DefaultRunName    = "graz_benchmark_v1"
)

// WithDefaults заполняет пустые поля
func (j TrainingJob) WithDefaults() TrainingJob {
	if j.BaseModel == "" {
		j.BaseModel = DefaultBaseModel
	}
	if j.Dataset == "" {
		j.Dataset = DefaultDataset
	}
	if j.Epochs <= 0 {
		j.Epochs = DefaultEpochs
	}
	if j.ImageSize <= 0 {
		j.ImageSize = DefaultTrainImgSz
	}
	if j.Project == "" {
		j.Project = DefaultProject
	}
	if j.Name == "" {
		j.Name = DefaultRunName
	}
	return j
}
