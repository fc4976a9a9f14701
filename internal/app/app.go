// Package app wires the Argus object recognition pipeline together:
// camera capture, motion gating, keypoint detection, persistence and
// trigger execution.
package app

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/ayusman/argus/internal/capture"
	"github.com/ayusman/argus/internal/detector"
	"github.com/ayusman/argus/internal/plugin"
	"github.com/ayusman/argus/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while the scene is static.
	IdleFPS = 5
	// ActiveFPS is the frame rate while motion keeps recognition running.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds without motion before
	// switching back to idle mode.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	Detector     detector.Detector
	PluginDir    string
	CameraID     int
	MotionThresh float64
}

// App runs the live recognition pipeline and fans detections out to the
// store, trigger plugins and any registered listener.
type App struct {
	config      Config
	camera      capture.Camera
	motion      *capture.MotionGate
	detector    detector.Detector
	pluginMgr   *plugin.Manager
	pluginExec  *plugin.Executor
	enabled     bool
	mu          sync.RWMutex
	stopCh      chan struct{}
	onDetection func(class string, box detector.Box)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	return &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionGate(motionThreshold),
		detector:   config.Detector,
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(5000), // 5 second timeout for plugin execution
	}
}

// SetEnabled enables or disables recognition.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether recognition is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera implementation. Only valid before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// OnDetection registers a callback invoked for every accepted detection.
// The callback runs on the pipeline goroutine and must return quickly.
func (a *App) OnDetection(fn func(class string, box detector.Box)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onDetection = fn
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start begins the recognition pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Recognition pipeline started")
	return nil
}

// Stop halts the recognition pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Recognition pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// MotionGate returns the motion gate instance.
func (a *App) MotionGate() *capture.MotionGate {
	return a.motion
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the object detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// persistDetection writes one accepted detection to the event log.
func (a *App) persistDetection(class string, frame int, box detector.Box, id string) {
	if a.config.Store == nil {
		return
	}

	err := a.config.Store.Detections().Create(&store.Detection{
		ID:    id,
		Class: class,
		Frame: frame,
		XMin:  box.XMin,
		YMin:  box.YMin,
		XMax:  box.XMax,
		YMax:  box.YMax,
	})
	if err != nil {
		log.Printf("Failed to persist detection of %s: %v", class, err)
	}
}

// fireTriggers executes every enabled trigger bound to the class.
func (a *App) fireTriggers(class string, box detector.Box, count int) {
	if a.config.Store == nil {
		return
	}

	triggers, err := a.config.Store.Triggers().ListByClass(class)
	if err != nil {
		log.Printf("Failed to load triggers for %s: %v", class, err)
		return
	}

	for _, tr := range triggers {
		p, err := a.pluginMgr.Get(tr.PluginName)
		if err != nil {
			log.Printf("Trigger %s references unknown plugin %s", tr.ID, tr.PluginName)
			continue
		}

		req := &plugin.Request{
			Action:    tr.ActionName,
			Class:     class,
			Count:     count,
			Detection: boxJSON(box),
			Config:    tr.Config,
		}

		go func(p *plugin.Plugin, req *plugin.Request) {
			if _, err := a.pluginExec.Execute(p, req); err != nil {
				log.Printf("Trigger plugin %s failed: %v", p.Manifest.Name, err)
			}
		}(p, req)
	}
}

// notifyDetection invokes the registered detection listener, if any.
func (a *App) notifyDetection(class string, box detector.Box) {
	a.mu.RLock()
	fn := a.onDetection
	a.mu.RUnlock()

	if fn != nil {
		fn(class, box)
	}
}

func boxJSON(box detector.Box) json.RawMessage {
	data, _ := json.Marshal(box)
	return data
}
