// Package plugin provides discovery and execution of external trigger
// plugins for the Argus object recognition system. A trigger plugin is a
// small executable that receives a detection event as JSON on stdin and
// reports its outcome as JSON on stdout.
package plugin

import "encoding/json"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request represents a detection event sent to a plugin for execution.
type Request struct {
	Action    string          `json:"action"`
	Class     string          `json:"class"`
	Count     int             `json:"count"`
	Detection json.RawMessage `json:"detection"`
	Config    json.RawMessage `json:"config"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
