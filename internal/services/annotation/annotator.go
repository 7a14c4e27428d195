package annotation

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"farmwatch/internal/models"
)

const (
	fontFace      = gocv.FontHersheySimplex
	fontScale     = 0.6
	textThickness = 2
	boxThickness  = 2
	labelPadding  = 10
)

var (
	textColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	priorityColors = map[models.Priority]color.RGBA{
		models.PriorityCritical: {R: 255, G: 0, B: 0, A: 255},   // red
		models.PriorityHigh:     {R: 255, G: 165, B: 0, A: 255}, // orange
		models.PriorityMedium:   {R: 255, G: 255, B: 0, A: 255}, // yellow
		models.PriorityLow:      {R: 0, G: 255, B: 0, A: 255},   // green
	}
)

// ColorFor returns the box colour of a priority; unknown priorities use LOW.
func ColorFor(p models.Priority) color.RGBA {
	if c, ok := priorityColors[p]; ok {
		return c
	}
	return priorityColors[models.PriorityLow]
}

// Label renders "<species>: <confidence> (<PRIORITY>)".
func Label(d models.Detection) string {
	return fmt.Sprintf("%s: %.2f (%s)", d.Species, d.Confidence, d.Priority)
}

// drawable is implemented by frames that expose an OpenCV buffer.
type drawable interface {
	Mat() *gocv.Mat
}

// Annotator draws detection boxes onto frames in place.
type Annotator struct {
	logger zerolog.Logger
}

func NewAnnotator(logger zerolog.Logger) *Annotator {
	return &Annotator{logger: logger}
}

// Annotate draws every detection in input order and returns the same frame.
// Drawing failures are logged and never propagated.
func (a *Annotator) Annotate(frame models.Frame, detections []models.Detection) (out models.Frame) {
	out = frame
	if frame == nil || len(detections) == 0 {
		return out
	}

	d, ok := frame.(drawable)
	if !ok {
		a.logger.Debug().Str("frame_type", fmt.Sprintf("%T", frame)).Msg("Frame does not support drawing")
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Interface("panic", r).Msg("Error drawing detections")
		}
	}()

	mat := d.Mat()
	if mat == nil || mat.Empty() {
		return out
	}

	// A failure part way leaves the frame untouched.
	canvas := mat.Clone()
	defer canvas.Close()
	for _, det := range detections {
		drawDetection(&canvas, det)
	}
	canvas.CopyTo(mat)
	return out
}

func drawDetection(mat *gocv.Mat, det models.Detection) {
	c := ColorFor(det.Priority)
	x1, y1 := det.BBox.X1(), det.BBox.Y1()

	gocv.Rectangle(mat, image.Rect(x1, y1, det.BBox.X2(), det.BBox.Y2()), c, boxThickness)

	label := Label(det)
	size := gocv.GetTextSize(label, fontFace, fontScale, textThickness)
	gocv.Rectangle(mat, image.Rect(x1, y1-size.Y-labelPadding, x1+size.X, y1), c, -1)
	gocv.PutText(mat, label, image.Pt(x1, y1-5), fontFace, fontScale, textColor, textThickness)
}
