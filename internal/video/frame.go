package video

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"farmwatch/internal/models"
)

// Frame is a models.Frame backed by an OpenCV Mat in BGR order.
type Frame struct {
	mat gocv.Mat
}

// NewFrame takes ownership of mat.
func NewFrame(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

// NewBlankFrame returns a black frame of the given size.
func NewBlankFrame(width, height int) *Frame {
	return &Frame{mat: gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)}
}

// Mat exposes the underlying buffer for drawing.
func (f *Frame) Mat() *gocv.Mat { return &f.mat }

func (f *Frame) Width() int  { return f.mat.Cols() }
func (f *Frame) Height() int { return f.mat.Rows() }

// JPEG encodes the frame, downscaling it first when it exceeds the bounds.
// The frame itself is never modified.
func (f *Frame) JPEG(opts models.EncodeOptions) ([]byte, error) {
	if f.mat.Empty() {
		return nil, fmt.Errorf("cannot encode empty frame")
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	src := f.mat
	if scale := fitScale(f.Width(), f.Height(), opts.MaxWidth, opts.MaxHeight); scale < 1.0 {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(f.mat, &resized, image.Point{}, scale, scale, gocv.InterpolationArea)
		src = resized
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, src, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	defer buf.Close()

	b := buf.GetBytes()
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (f *Frame) Close() error {
	return f.mat.Close()
}

// fitScale returns the factor that fits width x height inside the bounds
// while keeping the aspect ratio. It never upscales.
func fitScale(width, height, maxWidth, maxHeight int) float64 {
	if width <= 0 || height <= 0 {
		return 1.0
	}
	scale := 1.0
	if maxWidth > 0 {
		scale = min(scale, float64(maxWidth)/float64(width))
	}
	if maxHeight > 0 {
		scale = min(scale, float64(maxHeight)/float64(height))
	}
	return scale
}
