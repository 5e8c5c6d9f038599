// Package audio supplies technical properties of audio references and checks
// them against acceptance thresholds.
package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrNotFound is returned by a Provider when a reference does not resolve.
var ErrNotFound = errors.New("audio reference not found")

// Properties are the technical properties of one audio reference.
type Properties struct {
	SampleRate    int     `json:"sample_rate"`
	Duration      float64 `json:"duration"`
	NumChannels   int     `json:"num_channels"`
	NumFrames     int     `json:"num_frames"`
	AmplitudeMean float64 `json:"amplitude_mean"`
	AmplitudeMax  float64 `json:"amplitude_max"`
	SilenceRatio  float64 `json:"silence_ratio"`
	SNREstimate   float64 `json:"snr_estimate"`
}

// Provider resolves an audio reference to its properties. Implementations
// must be safe for concurrent use.
type Provider interface {
	Probe(ref string) (Properties, error)
}

// IsRemote reports whether ref points at an object store or URL rather than
// the local filesystem.
func IsRemote(ref string) bool {
	return strings.Contains(ref, "://")
}

// checkExists verifies a local reference. Remote references are assumed to
// exist; they are never fetched.
func checkExists(ref string) error {
	if IsRemote(ref) {
		return nil
	}
	info, err := os.Stat(ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return fmt.Errorf("failed to stat %s: %w", ref, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotFound, ref)
	}
	return nil
}
