package platform

import (
	"os"
	"path/filepath"
)

// InstallStatus indicates how much of a client's configuration exists.
type InstallStatus string

const (
	// StatusInstalled indicates the client's config file exists.
	StatusInstalled InstallStatus = "installed"

	// StatusNotInstalled indicates neither the config file nor its
	// directory exists.
	StatusNotInstalled InstallStatus = "not_installed"

	// StatusPartial indicates the config directory exists but the file
	// does not. Writing will create it.
	StatusPartial InstallStatus = "partial"
)

// DetectionResult describes the on-disk state of one client's config.
type DetectionResult struct {
	// Adapter is the adapter for the detected client.
	Adapter Adapter

	// Path is the config file path that was checked.
	Path string

	// Status indicates the installation state.
	Status InstallStatus
}

// Detect checks the config file at path for adapter. An empty path means
// the adapter's default location.
func Detect(a Adapter, path string) *DetectionResult {
	if path == "" {
		path = a.DefaultPath()
	}

	status := StatusNotInstalled
	switch {
	case fileExists(path):
		status = StatusInstalled
	case dirExists(filepath.Dir(path)):
		status = StatusPartial
	}

	return &DetectionResult{
		Adapter: a,
		Path:    path,
		Status:  status,
	}
}

// DetectAll returns detection results for every adapter in r, using
// pathFor to resolve each client's path. pathFor may be nil.
func DetectAll(r *Registry, pathFor func(Adapter) string) []*DetectionResult {
	adapters := r.All()
	results := make([]*DetectionResult, 0, len(adapters))
	for _, a := range adapters {
		path := ""
		if pathFor != nil {
			path = pathFor(a)
		}
		results = append(results, Detect(a, path))
	}
	return results
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// dirExists returns true if the path exists and is a directory.
func dirExists(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}
