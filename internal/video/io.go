package video

import (
	"fmt"
	"io"

	"farmwatch/internal/models"
)

// IO implements models.VideoIO with OpenCV.
type IO struct{}

func NewIO() *IO { return &IO{} }

func (IO) OpenSource(uri string) (models.VideoSource, error) {
	c, err := OpenCapture(uri)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (IO) CreateSink(path string, fps float64, width, height int) (models.VideoSink, error) {
	w, err := CreateWriter(path, fps, width, height)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ReadFrameAt decodes the frame at a 0-based index.
func (IO) ReadFrameAt(path string, index int) (models.Frame, error) {
	c, err := OpenCapture(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if index > 0 {
		c.Seek(index)
	}
	frame, err := c.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("frame %d is past the end of %s", index, path)
	}
	return frame, err
}
