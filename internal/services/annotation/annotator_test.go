package annotation

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmwatch/internal/models"
	"farmwatch/internal/video"
)

func TestLabel(t *testing.T) {
	d := models.Detection{Species: "wild_boar", Confidence: 0.876, Priority: models.PriorityHigh}
	assert.Equal(t, "wild_boar: 0.88 (HIGH)", Label(d))
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, uint8(255), ColorFor(models.PriorityCritical).R)
	assert.Equal(t, ColorFor(models.PriorityLow), ColorFor("UNKNOWN"))
	assert.NotEqual(t, ColorFor(models.PriorityHigh), ColorFor(models.PriorityMedium))
}

func TestAnnotate_EmptyDetectionsLeavesFrameUnchanged(t *testing.T) {
	a := NewAnnotator(zerolog.Nop())
	frame := video.NewBlankFrame(320, 240)
	defer frame.Close()

	before := append([]byte(nil), frame.Mat().ToBytes()...)
	out := a.Annotate(frame, nil)

	assert.Same(t, frame, out)
	assert.True(t, bytes.Equal(before, frame.Mat().ToBytes()))
}

func TestAnnotate_DrawsInPlace(t *testing.T) {
	a := NewAnnotator(zerolog.Nop())
	frame := video.NewBlankFrame(320, 240)
	defer frame.Close()

	before := append([]byte(nil), frame.Mat().ToBytes()...)
	out := a.Annotate(frame, []models.Detection{
		{Species: "elephant", Confidence: 0.9, Priority: models.PriorityCritical, BBox: models.BoundingBox{40, 60, 200, 200}},
		{Species: "cow", Confidence: 0.7, Priority: "BOGUS", BBox: models.BoundingBox{100, 100, 150, 150}},
	})

	assert.Same(t, frame, out)
	assert.False(t, bytes.Equal(before, frame.Mat().ToBytes()))
}

func TestAnnotate_OutOfBoundsBoxDoesNotPanic(t *testing.T) {
	a := NewAnnotator(zerolog.Nop())
	frame := video.NewBlankFrame(64, 48)
	defer frame.Close()

	assert.NotPanics(t, func() {
		a.Annotate(frame, []models.Detection{{Species: "bear", BBox: models.BoundingBox{-50, -50, 5000, 5000}}})
	})
}

type plainFrame struct{}

func (plainFrame) Width() int                                { return 1 }
func (plainFrame) Height() int                               { return 1 }
func (plainFrame) JPEG(models.EncodeOptions) ([]byte, error) { return nil, nil }
func (plainFrame) Close() error                              { return nil }

func TestAnnotate_NonDrawableFrame(t *testing.T) {
	a := NewAnnotator(zerolog.Nop())
	f := plainFrame{}
	out := a.Annotate(f, []models.Detection{{Species: "cow"}})
	assert.Equal(t, f, out)
}

func TestPlaceholder(t *testing.T) {
	jpeg, err := Placeholder("No active stream", 80)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(jpeg, []byte{0xff, 0xd8}))
}
