package detector

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/infrastructure/dataset"
)

// LoadLabels читает имена классов. Пустой путь даёт классы GRAZPEDWRI-DX.
// Файл .yaml/.yml читается как описание датасета (поле names),
// любой другой как список по одному имени в строке.
func LoadLabels(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), entity.GrazLabels...), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		desc, err := dataset.NewYAMLReader().ReadDataset(path)
		if err != nil {
			return nil, err
		}
		return desc.Names, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}
