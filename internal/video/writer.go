package video

import (
	"fmt"

	"gocv.io/x/gocv"

	"farmwatch/internal/models"
)

const outputCodec = "mp4v"

// Writer encodes frames to a video file.
type Writer struct {
	w *gocv.VideoWriter
}

func CreateWriter(path string, fps float64, width, height int) (*Writer, error) {
	if fps <= 0 {
		fps = 25
	}
	w, err := gocv.VideoWriterFile(path, outputCodec, fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("create video writer %s: %w", path, err)
	}
	if !w.IsOpened() {
		w.Close()
		return nil, fmt.Errorf("video writer for %s is not opened", path)
	}
	return &Writer{w: w}, nil
}

func (w *Writer) Write(frame models.Frame) error {
	f, ok := frame.(*Frame)
	if !ok {
		return fmt.Errorf("unsupported frame type %T", frame)
	}
	return w.w.Write(f.mat)
}

func (w *Writer) Close() error {
	return w.w.Close()
}
