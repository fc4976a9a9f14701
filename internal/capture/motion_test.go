package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionGate(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
	}{
		{name: "default threshold", threshold: 1.0},
		{name: "high threshold", threshold: 5.0},
		{name: "low threshold", threshold: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMotionGate(tt.threshold)
			if m == nil {
				t.Fatal("NewMotionGate returned nil")
			}
			defer m.Close()

			if m.threshold != tt.threshold {
				t.Errorf("threshold = %f, want %f", m.threshold, tt.threshold)
			}
			if m.initialized {
				t.Error("motion gate should not be initialized initially")
			}
		})
	}
}

func TestMotionGate_StaticScene(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	m := NewMotionGate(1.0)
	defer m.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	// First frame establishes the baseline.
	passed, changePercent := m.Detect(&frame1)
	if passed {
		t.Error("first frame should not pass the gate")
	}
	if changePercent != 0 {
		t.Errorf("first frame changePercent = %f, want 0", changePercent)
	}

	// An identical second frame must not pass.
	passed, changePercent = m.Detect(&frame2)
	if passed {
		t.Errorf("identical frames should not pass, changePercent = %f", changePercent)
	}
}

func TestMotionGate_SceneChange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	m := NewMotionGate(1.0)
	defer m.Close()

	dark := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer dark.Close()

	bright := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer bright.Close()
	gocv.Rectangle(&bright, image.Rect(100, 100, 400, 400), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	m.Detect(&dark)

	passed, changePercent := m.Detect(&bright)
	if !passed {
		t.Errorf("large scene change should pass the gate, changePercent = %f", changePercent)
	}
}

func TestMotionGate_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	m := NewMotionGate(1.0)
	defer m.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	m.Detect(&frame)
	m.Reset()

	// After a reset the next frame is a baseline again.
	if passed, _ := m.Detect(&frame); passed {
		t.Error("first frame after Reset should not pass the gate")
	}
}

func TestMotionGate_NilFrame(t *testing.T) {
	m := NewMotionGate(1.0)
	defer m.Close()

	if passed, _ := m.Detect(nil); passed {
		t.Error("nil frame should not pass the gate")
	}
}

func TestMotionGate_SetThreshold(t *testing.T) {
	m := NewMotionGate(1.0)
	defer m.Close()

	m.SetThreshold(3.0)
	if m.threshold != 3.0 {
		t.Errorf("threshold = %f, want 3.0", m.threshold)
	}

	// Non-positive values are ignored.
	m.SetThreshold(0)
	m.SetThreshold(-1)
	if m.threshold != 3.0 {
		t.Errorf("threshold = %f, want 3.0 unchanged", m.threshold)
	}
}
