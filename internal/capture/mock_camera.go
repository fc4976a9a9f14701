package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera is a test implementation of the Camera interface. Each
// ReadFrame returns a fresh copy produced by the configured frame source.
type MockCamera struct {
	mu       sync.Mutex
	open     bool
	fps      int
	frameSrc func() gocv.Mat
	readErr  error
}

// NewMockCamera creates a MockCamera producing frames from src.
// When src is nil, ReadFrame returns empty 480x640 frames.
func NewMockCamera(src func() gocv.Mat) *MockCamera {
	if src == nil {
		src = func() gocv.Mat {
			return gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		}
	}
	return &MockCamera{fps: DefaultFPS, frameSrc: src}
}

// SetReadError makes subsequent ReadFrame calls fail with err.
func (c *MockCamera) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
}

// Open marks the camera as open.
func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	return nil
}

// Close marks the camera as closed.
func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// ReadFrame returns a frame from the configured source.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	if c.readErr != nil {
		return nil, c.readErr
	}

	frame := c.frameSrc()
	return &frame, nil
}

// SetFPS records the requested frame rate.
func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

// FPS returns the recorded frame rate.
func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether Open has been called.
func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}
