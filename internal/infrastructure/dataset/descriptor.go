package dataset

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"wrist-triage/internal/domain/entity"
	"wrist-triage/internal/domain/port"
)

// rawDescriptor формат data.yaml библиотеки обучения
type rawDescriptor struct {
	Path  string    `yaml:"path"`
	Train yaml.Node `yaml:"train"`
	Val   yaml.Node `yaml:"val"`
	Test  yaml.Node `yaml:"test"`
	NC    *int      `yaml:"nc"`
	Names yaml.Node `yaml:"names"`
}

// YAMLReader читает описание датасета из файла
type YAMLReader struct{}

// NewYAMLReader создаёт читатель описаний датасета
func NewYAMLReader() *YAMLReader {
	return &YAMLReader{}
}

// ReadDataset разбирает и проверяет data.yaml
func (r *YAMLReader) ReadDataset(path string) (*entity.DatasetDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset descriptor: %w", err)
	}
	return Parse(data)
}

// Parse разбирает содержимое data.yaml.
// names бывает списком или словарём индекс→имя, train/val строкой или списком.
func Parse(data []byte) (*entity.DatasetDescriptor, error) {
	var raw rawDescriptor
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidDataset, err)
	}

	train, err := splitField(&raw.Train)
	if err != nil {
		return nil, fmt.Errorf("%w: train: %v", entity.ErrInvalidDataset, err)
	}
	val, err := splitField(&raw.Val)
	if err != nil {
		return nil, fmt.Errorf("%w: val: %v", entity.ErrInvalidDataset, err)
	}
	test, err := splitField(&raw.Test)
	if err != nil {
		return nil, fmt.Errorf("%w: test: %v", entity.ErrInvalidDataset, err)
	}

	if train == "" {
		return nil, fmt.Errorf("%w: train split is required", entity.ErrInvalidDataset)
	}
	if val == "" {
		return nil, fmt.Errorf("%w: val split is required", entity.ErrInvalidDataset)
	}

	names, err := parseNames(&raw.Names)
	if err != nil {
		return nil, fmt.Errorf("%w: names: %v", entity.ErrInvalidDataset, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: names are required", entity.ErrInvalidDataset)
	}
	if raw.NC != nil && *raw.NC != len(names) {
		return nil, fmt.Errorf("%w: nc=%d but %d names", entity.ErrInvalidDataset, *raw.NC, len(names))
	}

	return &entity.DatasetDescriptor{
		Root:  raw.Path,
		Train: train,
		Val:   val,
		Test:  test,
		Names: names,
	}, nil
}

// splitField возвращает путь сплита; список путей склеивается через запятую.
func splitField(n *yaml.Node) (string, error) {
	switch n.Kind {
	case 0:
		return "", nil
	case yaml.ScalarNode:
		return strings.TrimSpace(n.Value), nil
	case yaml.SequenceNode:
		var paths []string
		if err := n.Decode(&paths); err != nil {
			return "", err
		}
		return strings.Join(paths, ","), nil
	default:
		return "", fmt.Errorf("unexpected yaml kind %d", n.Kind)
	}
}

func parseNames(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.SequenceNode:
		var names []string
		if err := n.Decode(&names); err != nil {
			return nil, err
		}
		return names, nil
	case yaml.MappingNode:
		var byIndex map[int]string
		if err := n.Decode(&byIndex); err != nil {
			return nil, err
		}
		keys := make([]int, 0, len(byIndex))
		for k := range byIndex {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		names := make([]string, len(keys))
		for i, k := range keys {
			if k != i {
				return nil, fmt.Errorf("class indices must be contiguous from 0, got %d", k)
			}
			names[i] = byIndex[k]
		}
		return names, nil
	default:
		return nil, fmt.Errorf("unexpected yaml kind %d", n.Kind)
	}
}

// Проверка реализации интерфейса
var _ port.DatasetReader = (*YAMLReader)(nil)
