package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const DefaultConfigPath = "viewer.toml"

type DetectorConfig struct {
	Backend      string        `toml:"backend"`       // gocv, tflite, http, ws
	ModelPath    string        `toml:"model_path"`    // веса для локальных бэкендов
	LabelsPath   string        `toml:"labels_path"`   // список классов или data.yaml
	InferenceURL string        `toml:"inference_url"` // сервис для бэкенда http
	WSURL        string        `toml:"ws_url"`        // сервер для бэкенда ws
	InputSize    int           `toml:"input_size"`
	IoU          float64       `toml:"iou_threshold"`
	Timeout      time.Duration `toml:"timeout"`
}

type TrainingConfig struct {
	Binary    string `toml:"binary"`
	BaseModel string `toml:"base_model"`
	Dataset   string `toml:"dataset"`
	Epochs    int    `toml:"epochs"`
	ImageSize int    `toml:"image_size"`
	Project   string `toml:"project"`
	Name      string `toml:"name"`
}

type Config struct {
	HTTPAddr      string `toml:"http_addr"`
	TelegramToken string `toml:"-"`
	Lang          string `toml:"lang"`
	StaticDir     string `toml:"static_dir"`

	Detector DetectorConfig `toml:"detector"`
	Training TrainingConfig `toml:"training"`
}

func NewDefaultConfig() *Config {
	return &Config{
		HTTPAddr:  ":8080",
		Lang:      "es",
		StaticDir: "web/static",
		Detector: DetectorConfig{
			Backend:      "gocv",
			ModelPath:    "weights/best.onnx",
			InferenceURL: "http://localhost:5000/predict",
			WSURL:        "ws://localhost:8765/detect",
			InputSize:    640,
			IoU:          0.7,
			Timeout:      60 * time.Second,
		},
		Training: TrainingConfig{
			Binary:    "yolo",
			BaseModel: "yolov8n.pt",
			Dataset:   "data/raw/GRAZPEDWRI-DX/data.yaml",
			Epochs:    10,
			ImageSize: 640,
			Project:   "reports",
			Name:      "graz_benchmark_v1",
		},
	}
}

// Load собирает конфигурацию: значения по умолчанию, файл, затем окружение.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg, err := LoadFile(getEnv("CONFIG_FILE", DefaultConfigPath))
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile читает TOML поверх значений по умолчанию. Отсутствие файла не ошибка.
func LoadFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	c.Lang = getEnv("UI_LANG", c.Lang)
	c.StaticDir = getEnv("STATIC_DIR", c.StaticDir)

	d := &c.Detector
	d.Backend = getEnv("DETECTOR_BACKEND", d.Backend)
	d.ModelPath = getEnv("MODEL_PATH", d.ModelPath)
	d.LabelsPath = getEnv("LABELS_PATH", d.LabelsPath)
	d.InferenceURL = getEnv("INFERENCE_URL", d.InferenceURL)
	d.WSURL = getEnv("DETECTOR_WS_URL", d.WSURL)

	tr := &c.Training
	tr.Binary = getEnv("TRAIN_BINARY", tr.Binary)
	tr.BaseModel = getEnv("TRAIN_BASE_MODEL", tr.BaseModel)
	tr.Dataset = getEnv("TRAIN_DATASET", tr.Dataset)
	tr.Project = getEnv("TRAIN_PROJECT", tr.Project)
	tr.Name = getEnv("TRAIN_NAME", tr.Name)

	var err error
	if d.InputSize, err = getEnvInt("INPUT_SIZE", d.InputSize); err != nil {
		return err
	}
	if d.IoU, err = getEnvFloat("IOU_THRESHOLD", d.IoU); err != nil {
		return err
	}
	if d.Timeout, err = getEnvDuration("DETECTOR_TIMEOUT", d.Timeout); err != nil {
		return err
	}
	if tr.Epochs, err = getEnvInt("TRAIN_EPOCHS", tr.Epochs); err != nil {
		return err
	}
	if tr.ImageSize, err = getEnvInt("TRAIN_IMGSZ", tr.ImageSize); err != nil {
		return err
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
