package models

// EncodeOptions controls JPEG encoding of a frame. Zero bounds disable resizing.
type EncodeOptions struct {
	Quality   int
	MaxWidth  int
	MaxHeight int
}

// Frame is a decoded video frame. Implementations may own native memory, so
// callers must Close frames they receive.
type Frame interface {
	Width() int
	Height() int
	JPEG(opts EncodeOptions) ([]byte, error)
	Close() error
}

// VideoSource reads frames sequentially. Read returns io.EOF at end of stream.
type VideoSource interface {
	Read() (Frame, error)
	FPS() float64
	FrameCount() int
	Width() int
	Height() int
	Close() error
}

// VideoSink receives frames in order.
type VideoSink interface {
	Write(frame Frame) error
	Close() error
}

// VideoIO opens sources and sinks backed by the video library.
type VideoIO interface {
	OpenSource(uri string) (VideoSource, error)
	CreateSink(path string, fps float64, width, height int) (VideoSink, error)
	ReadFrameAt(path string, index int) (Frame, error)
}
