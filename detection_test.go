package facepipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetection_SelectLargestShouldPickTheBiggestArea(t *testing.T) {
	detections := []Detection{
		{YMin: 0, XMin: 0, YMax: 0.1, XMax: 0.1},
		{YMin: 0, XMin: 0, YMax: 0.5, XMax: 0.5},
	}

	idx, err := SelectLargest(detections)
	assert.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestDetection_SelectLargestShouldIgnoreTheScore(t *testing.T) {
	detections := []Detection{
		{YMin: 0, XMin: 0, YMax: 0.4, XMax: 0.4, Score: 0.99},
		{YMin: 0.1, XMin: 0.1, YMax: 0.9, XMax: 0.9, Score: 0.01},
		{YMin: 0, XMin: 0, YMax: 0.2, XMax: 0.2, Score: 0.95},
	}

	idx, err := SelectLargest(detections)
	assert.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestDetection_SelectLargestShouldFailOnEmptyBatch(t *testing.T) {
	_, err := SelectLargest(nil)
	assert.ErrorIs(t, err, ErrNoDetections)

	_, err = SelectLargest([]Detection{})
	assert.ErrorIs(t, err, ErrNoDetections)
}

func TestDetection_BoxShouldDenormalizeAgainstImageDimensions(t *testing.T) {
	det := Detection{YMin: 0.2, XMin: 0.3, YMax: 0.6, XMax: 0.5}

	box := det.Box(100, 200)
	assert.Equal(t, Box{YMin: 20, XMin: 60, YMax: 60, XMax: 100}, box)
}
