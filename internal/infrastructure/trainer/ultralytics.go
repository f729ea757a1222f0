package trainer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"wrist-triage/internal/domain/entity"
)

// CommandRunner запускает внешнюю команду до завершения
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner запускает команду через os/exec с выводом в консоль
type ExecRunner struct{}

// Run запускает процесс и ждёт его завершения
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Ultralytics запускает дообучение через CLI ultralytics
type Ultralytics struct {
	binary string
	runner CommandRunner
}

// NewUltralytics создаёт тренер; binary по умолчанию "yolo"
func NewUltralytics(binary string, runner CommandRunner) *Ultralytics {
	if binary == "" {
		binary = "yolo"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Ultralytics{binary: binary, runner: runner}
}

// Args аргументы командной строки для задания
func Args(job entity.TrainingJob) []string {
	return []string{
		"detect", "train",
		"model=" + job.BaseModel,
		"data=" + job.Dataset,
		"epochs=" + strconv.Itoa(job.Epochs),
		"imgsz=" + strconv.Itoa(job.ImageSize),
		"project=" + job.Project,
		"name=" + job.Name,
	}
}

// Train запускает обучение и возвращает каталог последнего запуска
func (u *Ultralytics) Train(ctx context.Context, job entity.TrainingJob) (string, error) {
	args := Args(job)
	log.Printf("starting training: %s %v", u.binary, args)

	if err := u.runner.Run(ctx, u.binary, args...); err != nil {
		return "", fmt.Errorf("run %s: %w", u.binary, err)
	}

	return LatestRun(job.Project, job.Name)
}

// LatestRun ищет самый свежий каталог project/name или project/nameN.
// Ultralytics добавляет к имени номер, если каталог уже существует.
func LatestRun(project, name string) (string, error) {
	entries, err := os.ReadDir(project)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read runs: %w", err)
	}

	var (
		latest string
		newest int64
	)
	for _, e := range entries {
		if !e.IsDir() || !isRunDir(e.Name(), name) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mt := info.ModTime().UnixNano(); latest == "" || mt > newest {
			latest, newest = filepath.Join(project, e.Name()), mt
		}
	}

	if latest == "" {
		return "", fmt.Errorf("%w: no run directory %s", entity.ErrNoCheckpoint, filepath.Join(project, name))
	}
	return latest, nil
}

// isRunDir: dir равен name или name с числовым суффиксом
func isRunDir(dir, name string) bool {
	suffix, ok := strings.CutPrefix(dir, name)
	if !ok {
		return false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
