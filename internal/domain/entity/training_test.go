package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrainingJob_WithDefaults(t *testing.T) {
	job := TrainingJob{}.WithDefaults()
	require.Equal(t, "yolov8n.pt", job.BaseModel)
	require.Equal(t, "data/raw/GRAZPEDWRI-DX/data.yaml", job.Dataset)
	require.Equal(t, 10, job.Epochs)
	require.Equal(t, 640, job.ImageSize)

	job = TrainingJob{Dataset: "custom/data.yaml", Epochs: 3}.WithDefaults()
	require.Equal(t, "custom/data.yaml", job.Dataset)
	require.Equal(t, 3, job.Epochs)
}
