// Package main provides a notification plugin for Argus.
// It appends detection events to a log file and can show a desktop
// notification on macOS via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action    string          `json:"action"`
	Class     string          `json:"class"`
	Count     int             `json:"count"`
	Detection json.RawMessage `json:"detection"`
	Config    json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// LogConfig defines configuration for the log action.
type LogConfig struct {
	Path string `json:"path"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "log":
		if err := handleLog(req); err != nil {
			writeErrorResponse(fmt.Sprintf("action log failed: %v", err))
			return
		}
	case "notify":
		if err := handleNotify(req); err != nil {
			writeErrorResponse(fmt.Sprintf("action notify failed: %v", err))
			return
		}
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	writeSuccessResponse()
}

// handleLog appends the event to a log file. The path defaults to
// ~/.argus/detections.log and can be overridden in the trigger config.
func handleLog(req Request) error {
	var cfg LogConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	path := cfg.Path
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(homeDir, ".argus", "detections.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s count=%d %s\n",
		time.Now().Format(time.RFC3339), req.Class, req.Count, string(req.Detection))
	_, err = f.WriteString(line)
	return err
}

// handleNotify shows a desktop notification on macOS.
func handleNotify(req Request) error {
	message := fmt.Sprintf("Detected %s (%d so far)", req.Class, req.Count)
	script := fmt.Sprintf(`display notification "%s" with title "Argus"`, message)

	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
