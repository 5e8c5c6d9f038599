package audio

import (
	"math"
	"math/rand/v2"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var simulatedSampleRates = []int{8000, 16000, 22050, 44100}

// Simulator derives plausible properties from the reference's file name.
// The same file name always yields the same properties, in any process and
// in any call order.
type Simulator struct {
	// CheckLocal makes Probe fail with ErrNotFound for local references that
	// do not exist on disk.
	CheckLocal bool
}

// NewSimulator returns a simulator that verifies local references exist.
func NewSimulator() *Simulator {
	return &Simulator{CheckLocal: true}
}

// Probe implements Provider.
func (s *Simulator) Probe(ref string) (Properties, error) {
	if s.CheckLocal {
		if err := checkExists(ref); err != nil {
			return Properties{}, err
		}
	}
	return Simulate(ref), nil
}

// Simulate returns the simulated properties of ref without touching the
// filesystem.
func Simulate(ref string) Properties {
	seed := xxhash.Sum64String(baseName(ref))
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	uniform := func(lo, hi float64) float64 {
		return lo + rng.Float64()*(hi-lo)
	}

	sampleRate := simulatedSampleRates[rng.IntN(len(simulatedSampleRates))]
	duration := uniform(0.5, 12.0)
	return Properties{
		SampleRate:    sampleRate,
		Duration:      duration,
		NumChannels:   1,
		NumFrames:     int(math.Round(duration * float64(sampleRate))),
		AmplitudeMean: uniform(0.05, 0.3),
		AmplitudeMax:  uniform(0.4, 1.0),
		SilenceRatio:  uniform(0.0, 0.3),
		SNREstimate:   uniform(10.0, 30.0),
	}
}

// baseName handles both OS paths and URL-style references.
func baseName(ref string) string {
	ref = strings.ReplaceAll(ref, "\\", "/")
	return path.Base(ref)
}
