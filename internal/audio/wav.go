package audio

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// silenceRMS is the frame RMS below which a frame counts as silent
	// (about -40 dBFS).
	silenceRMS = 0.01
	frameRate  = 50 // analysis frames per second
	maxSNR     = 60.0
)

// WAVDecoder reads properties from local WAV files. Remote references are
// handed to Remote, which defaults to a Simulator.
type WAVDecoder struct {
	Remote Provider
}

// NewWAVDecoder returns a decoder that simulates remote references.
func NewWAVDecoder() *WAVDecoder {
	return &WAVDecoder{Remote: &Simulator{}}
}

// Probe implements Provider.
func (d *WAVDecoder) Probe(ref string) (Properties, error) {
	if IsRemote(ref) {
		return d.Remote.Probe(ref)
	}
	if err := checkExists(ref); err != nil {
		return Properties{}, err
	}

	f, err := os.Open(ref)
	if err != nil {
		return Properties{}, fmt.Errorf("failed to open %s: %w", ref, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Properties{}, fmt.Errorf("%s is not a valid WAV file", ref)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Properties{}, fmt.Errorf("failed to decode %s: %w", ref, err)
	}

	return analyze(buf, int(dec.SampleRate), int(dec.NumChans), int(dec.BitDepth))
}

// analyze derives properties from decoded PCM samples.
func analyze(buf *audio.IntBuffer, sampleRate, channels, bitDepth int) (Properties, error) {
	if sampleRate <= 0 || channels <= 0 || bitDepth <= 0 {
		return Properties{}, fmt.Errorf("invalid WAV header: rate=%d channels=%d depth=%d", sampleRate, channels, bitDepth)
	}

	frames := len(buf.Data) / channels
	props := Properties{
		SampleRate:  sampleRate,
		NumChannels: channels,
		NumFrames:   frames,
		Duration:    float64(frames) / float64(sampleRate),
	}
	if frames == 0 {
		props.SilenceRatio = 1
		return props, nil
	}

	scale := math.Exp2(float64(bitDepth - 1))
	mono := make([]float64, frames)
	sum := 0.0
	for i := 0; i < frames; i++ {
		v := 0.0
		for c := 0; c < channels; c++ {
			v += float64(buf.Data[i*channels+c]) / scale
		}
		v /= float64(channels)
		mono[i] = v

		a := math.Abs(v)
		sum += a
		if a > props.AmplitudeMax {
			props.AmplitudeMax = a
		}
	}
	props.AmplitudeMean = sum / float64(frames)
	props.SilenceRatio, props.SNREstimate = energyProfile(mono, sampleRate)
	return props, nil
}

// energyProfile splits samples into short windows and returns the share of
// silent windows and the ratio of loud to silent window power in dB.
func energyProfile(samples []float64, sampleRate int) (silence, snr float64) {
	window := sampleRate / frameRate
	if window < 1 {
		window = 1
	}

	var windows, silent int
	var signalPower, noisePower float64
	for start := 0; start < len(samples); start += window {
		end := min(start+window, len(samples))
		power := 0.0
		for _, s := range samples[start:end] {
			power += s * s
		}
		power /= float64(end - start)

		windows++
		if math.Sqrt(power) < silenceRMS {
			silent++
			noisePower += power
		} else {
			signalPower += power
		}
	}

	silence = float64(silent) / float64(windows)
	loud := windows - silent
	switch {
	case loud == 0:
		return silence, 0
	case silent == 0 || noisePower == 0:
		return silence, maxSNR
	}
	ratio := (signalPower / float64(loud)) / (noisePower / float64(silent))
	return silence, math.Min(10*math.Log10(ratio), maxSNR)
}
