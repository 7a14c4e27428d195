package video

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"farmwatch/internal/models"
)

func TestFitScale(t *testing.T) {
	assert.Equal(t, 1.0, fitScale(640, 480, 0, 0))
	assert.Equal(t, 1.0, fitScale(640, 480, 1280, 720), "never upscales")
	assert.Equal(t, 0.5, fitScale(2560, 1440, 1280, 720))
	assert.Equal(t, 0.5, fitScale(1920, 1440, 1280, 720))
	assert.Equal(t, 1.0, fitScale(0, 0, 10, 10))
}

func TestFrameJPEG(t *testing.T) {
	f := NewBlankFrame(1920, 1080)
	defer f.Close()

	full, err := f.JPEG(models.EncodeOptions{Quality: 80})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(full, []byte{0xff, 0xd8}))

	small, err := f.JPEG(models.EncodeOptions{Quality: 80, MaxWidth: 640, MaxHeight: 360})
	require.NoError(t, err)

	img, err := gocv.IMDecode(small, gocv.IMReadColor)
	require.NoError(t, err)
	defer img.Close()
	assert.Equal(t, 640, img.Cols())
	assert.Equal(t, 360, img.Rows())

	// source frame is untouched
	assert.Equal(t, 1920, f.Width())
}

func TestWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.avi")

	w, err := gocv.VideoWriterFile(path, "MJPG", 10, 64, 48, true)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		f := NewBlankFrame(64, 48)
		gocv.Rectangle(f.Mat(), image.Rect(0, 0, 10*(i+1), 10), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
		require.NoError(t, w.Write(*f.Mat()))
		f.Close()
	}
	require.NoError(t, w.Close())

	c, err := OpenCapture(path)
	require.NoError(t, err)
	defer c.Close()

	read := 0
	for {
		frame, err := c.Read()
		if err != nil {
			break
		}
		assert.Equal(t, 64, frame.Width())
		frame.Close()
		read++
	}
	assert.Equal(t, 5, read)

	frame, err := IO{}.ReadFrameAt(path, 2)
	require.NoError(t, err)
	frame.Close()
}

func TestIsNetworkStream(t *testing.T) {
	assert.True(t, isNetworkStream("rtsp://cam.local:554/stream1"))
	assert.True(t, isNetworkStream("HTTP://cam/mjpeg"))
	assert.False(t, isNetworkStream("/srv/uploads/barn.mp4"))
	assert.False(t, isNetworkStream("0"))
}
