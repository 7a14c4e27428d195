package annotation

import (
	"image"

	"gocv.io/x/gocv"

	"farmwatch/internal/models"
	"farmwatch/internal/video"
)

const (
	placeholderWidth  = 640
	placeholderHeight = 480
)

// Placeholder renders a black 640x480 JPEG with message centred on it.
func Placeholder(message string, quality int) ([]byte, error) {
	frame := video.NewBlankFrame(placeholderWidth, placeholderHeight)
	defer frame.Close()

	size := gocv.GetTextSize(message, fontFace, 1.0, textThickness)
	x := (placeholderWidth - size.X) / 2
	y := (placeholderHeight + size.Y) / 2
	gocv.PutText(frame.Mat(), message, image.Pt(x, y), fontFace, 1.0, textColor, textThickness)

	return frame.JPEG(models.EncodeOptions{Quality: quality})
}
