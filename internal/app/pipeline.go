package app

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// runPipeline is the main recognition loop. It reads frames from the
// camera and manages the transitions between idle and active modes based
// on the motion gate.
//
// Pipeline logic:
// 1. Start in idle mode (IdleFPS)
// 2. On motion, switch to active mode (ActiveFPS)
// 3. Run keypoint detection on active frames
// 4. Persist accepted detections, fire bound triggers, notify listeners
// 5. After 2s without motion, switch back to idle mode
func (a *App) runPipeline(stopCh chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Skip processing if recognition is disabled
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			motion, _ := a.motion.Detect(frame)

			if motion {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.Camera().SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			d := a.Detector()
			if !activeMode || d == nil {
				frame.Close()
				continue
			}

			detections, err := d.Detect(frame)
			frame.Close()

			if err != nil {
				log.Printf("Error detecting objects: %v", err)
				continue
			}

			if len(detections) == 0 {
				continue
			}

			frameNo := 0
			counters := map[string]int{}
			if kd, ok := d.(counterSource); ok {
				frameNo = kd.FrameCount()
				counters = kd.Counters()
			}

			for class, boxes := range detections {
				for _, box := range boxes {
					log.Printf("Detected %s at (%d,%d)-(%d,%d)", class, box.XMin, box.YMin, box.XMax, box.YMax)

					a.persistDetection(class, frameNo, box, uuid.NewString())
					a.fireTriggers(class, box, counters[class])
					a.notifyDetection(class, box)
				}
			}
		}
	}
}

// counterSource is implemented by detectors that keep session counters.
type counterSource interface {
	FrameCount() int
	Counters() map[string]int
}
