package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const binaryName = "speechprep"

// FindProjectBinary locates the speechprep binary under test. SPEECHPREP_BINARY
// wins, then bin/speechprep in the nearest ancestor holding a go.mod, then PATH.
func FindProjectBinary() (string, error) {
	if p := os.Getenv("SPEECHPREP_BINARY"); p != "" {
		return p, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			candidate := filepath.Join(dir, "bin", binaryName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if p, err := exec.LookPath(binaryName); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%s binary not found; build it to bin/%s or set SPEECHPREP_BINARY", binaryName, binaryName)
}
