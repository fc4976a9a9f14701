package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ayusman/argus/internal/app"
	"github.com/ayusman/argus/internal/detector"
	"github.com/ayusman/argus/internal/features"
	"github.com/ayusman/argus/internal/match"
	"github.com/ayusman/argus/internal/server"
	"github.com/ayusman/argus/internal/store"
	"github.com/ayusman/argus/internal/tray"
)

func main() {
	var (
		dbRoot      = flag.String("database", "", "root directory of the reference object database (required)")
		featureMode = flag.String("features", string(features.ModeRootSIFT), "feature algorithm: SIFT, RootSIFT or SURF")
		matcherMode = flag.String("matcher", string(match.ModeBruteForce), "matcher: BF or FLANN")
		minPoints   = flag.Int("min-points", detector.DefaultConfig().MinPoints, "correspondence count a reference must exceed")
		cameraID    = flag.Int("camera", 0, "camera device ID")
		addr        = flag.String("addr", ":8080", "HTTP listen address")
		pluginDir   = flag.String("plugins", "", "directory containing trigger plugins")
		noTray      = flag.Bool("no-tray", false, "run without the system tray")
	)
	flag.Parse()

	fmt.Println("Argus - Keypoint Object Recognition")

	if *dbRoot == "" {
		log.Fatal("a reference database is required; pass -database")
	}

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".argus")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "argus.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Load the reference database and build the detector
	detectorCfg := detector.DefaultConfig()
	detectorCfg.DatabasePath = *dbRoot
	detectorCfg.FeatureMode = features.Mode(*featureMode)
	detectorCfg.MatcherMode = match.Mode(*matcherMode)
	detectorCfg.MinPoints = *minPoints

	det, err := detector.NewKeypointDetector(detectorCfg)
	if err != nil {
		log.Fatalf("Failed to build detector: %v", err)
	}
	defer det.Close()

	// Wire the pipeline
	a := app.New(app.Config{
		Store:     st,
		Detector:  det,
		PluginDir: *pluginDir,
		CameraID:  *cameraID,
	})

	if *pluginDir != "" {
		if err := a.DiscoverPlugins(); err != nil {
			log.Printf("Plugin discovery failed: %v", err)
		}
	}

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer a.Stop()

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	// Configure and start the server
	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Camera:    a.Camera(),
		Detector:  det,
		Counters:  det,
	})

	fmt.Printf("Starting server on %s\n", *addr)
	go func() {
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if *noTray {
		select {}
	}

	// The tray owns the main goroutine until quit
	tr := tray.New()
	tr.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
	})
	tr.OnQuit(func() {
		a.Stop()
	})
	a.OnDetection(func(class string, _ detector.Box) {
		tr.SetLastDetection(class)
	})
	tr.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.argus/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".argus", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
