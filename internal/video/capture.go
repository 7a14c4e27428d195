package video

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"farmwatch/internal/models"
)

// ffmpegOptions tune OpenCV's FFmpeg backend for network cameras.
var ffmpegOptions = []string{
	"rtsp_transport;tcp",
	"stimeout;5000000",
	"rw_timeout;5000000",
	"max_delay;500000",
	"fflags;nobuffer",
	"flags;low_delay",
	"analyzeduration;500000",
	"probesize;2000000",
}

var configureFFmpeg sync.Once

// Capture reads frames from a file, device or network stream.
type Capture struct {
	cap        *gocv.VideoCapture
	fps        float64
	frameCount int
	width      int
	height     int
}

// OpenCapture opens uri. Network streams go through FFmpeg.
func OpenCapture(uri string) (*Capture, error) {
	var (
		cap *gocv.VideoCapture
		err error
	)
	if isNetworkStream(uri) {
		configureFFmpeg.Do(func() {
			os.Setenv("OPENCV_FFMPEG_CAPTURE_OPTIONS", strings.Join(ffmpegOptions, "|"))
		})
		cap, err = gocv.OpenVideoCaptureWithAPI(uri, gocv.VideoCaptureFFmpeg)
	} else {
		cap, err = gocv.OpenVideoCapture(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("open video source: %w", err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("video source is not opened")
	}

	c := &Capture{
		cap:        cap,
		fps:        cap.Get(gocv.VideoCaptureFPS),
		frameCount: int(cap.Get(gocv.VideoCaptureFrameCount)),
		width:      int(cap.Get(gocv.VideoCaptureFrameWidth)),
		height:     int(cap.Get(gocv.VideoCaptureFrameHeight)),
	}
	if c.frameCount < 0 {
		c.frameCount = 0
	}

	log.Debug().
		Float64("fps", c.fps).
		Int("frames", c.frameCount).
		Int("width", c.width).
		Int("height", c.height).
		Msg("Video source opened")
	return c, nil
}

// Read returns the next frame, or io.EOF when the source has no more frames.
func (c *Capture) Read() (models.Frame, error) {
	mat := gocv.NewMat()
	if ok := c.cap.Read(&mat); !ok {
		mat.Close()
		return nil, io.EOF
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("decoder returned an empty frame")
	}
	return NewFrame(mat), nil
}

// Seek positions the capture on a 0-based frame index.
func (c *Capture) Seek(index int) {
	c.cap.Set(gocv.VideoCapturePosFrames, float64(index))
}

func (c *Capture) FPS() float64    { return c.fps }
func (c *Capture) FrameCount() int { return c.frameCount }
func (c *Capture) Width() int      { return c.width }
func (c *Capture) Height() int     { return c.height }

func (c *Capture) Close() error {
	return c.cap.Close()
}

func isNetworkStream(uri string) bool {
	lower := strings.ToLower(uri)
	for _, scheme := range []string{"rtsp://", "rtsps://", "rtmp://", "http://", "https://", "udp://", "tcp://"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
