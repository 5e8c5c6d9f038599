package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWAV(t *testing.T, path string, rate, channels int, samples []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

// halfTone is one second of a 440 Hz tone at half scale followed by one
// second of digital silence.
func halfTone(rate int) []int {
	data := make([]int, 2*rate)
	for i := 0; i < rate; i++ {
		data[i] = int(0.5 * 32767 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
	}
	return data
}

func TestSimulateDeterministic(t *testing.T) {
	a := Simulate("data/raw/hi/utt_001.wav")
	b := Simulate("data/raw/hi/utt_001.wav")
	assert.Equal(t, a, b)

	// Only the file name seeds the generator.
	assert.Equal(t, a, Simulate("s3://bucket/other/utt_001.wav"))
	assert.NotEqual(t, a, Simulate("data/raw/hi/utt_002.wav"))
}

func TestSimulateConcurrent(t *testing.T) {
	want := Simulate("clip_42.wav")
	var wg sync.WaitGroup
	results := make([]Properties, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Simulate("clip_42.wav")
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestSimulateRanges(t *testing.T) {
	for _, name := range []string{"a.wav", "b.wav", "c.flac", "utt_9999.wav", "x"} {
		p := Simulate(name)
		assert.Contains(t, simulatedSampleRates, p.SampleRate)
		assert.GreaterOrEqual(t, p.Duration, 0.5)
		assert.Less(t, p.Duration, 12.0)
		assert.Equal(t, 1, p.NumChannels)
		assert.Equal(t, int(math.Round(p.Duration*float64(p.SampleRate))), p.NumFrames)
		assert.GreaterOrEqual(t, p.AmplitudeMean, 0.05)
		assert.GreaterOrEqual(t, p.AmplitudeMax, 0.4)
		assert.LessOrEqual(t, p.SilenceRatio, 0.3)
		assert.GreaterOrEqual(t, p.SNREstimate, 10.0)
	}
}

func TestSimulatorNotFound(t *testing.T) {
	s := NewSimulator()

	_, err := s.Probe(filepath.Join(t.TempDir(), "missing.wav"))
	assert.True(t, errors.Is(err, ErrNotFound))

	p, err := s.Probe("s3://bucket/raw/hi/missing.wav")
	require.NoError(t, err, "remote references are assumed to exist")
	assert.Equal(t, Simulate("missing.wav"), p)

	_, err = s.Probe(t.TempDir())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSimulatorWithoutLocalCheck(t *testing.T) {
	s := &Simulator{}
	_, err := s.Probe("/definitely/not/here.wav")
	assert.NoError(t, err)
}

func TestWAVDecoderProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, 16000, 1, halfTone(16000))

	p, err := NewWAVDecoder().Probe(path)
	require.NoError(t, err)

	assert.Equal(t, 16000, p.SampleRate)
	assert.Equal(t, 1, p.NumChannels)
	assert.Equal(t, 32000, p.NumFrames)
	assert.InDelta(t, 2.0, p.Duration, 1e-9)
	assert.InDelta(t, 0.5, p.AmplitudeMax, 0.01)
	assert.InDelta(t, 0.5/math.Pi, p.AmplitudeMean, 0.01)
	assert.InDelta(t, 0.5, p.SilenceRatio, 1e-9)
	assert.Equal(t, maxSNR, p.SNREstimate)
}

func TestWAVDecoderStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeWAV(t, path, 44100, 2, make([]int, 2*44100))

	p, err := NewWAVDecoder().Probe(path)
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumChannels)
	assert.Equal(t, 44100, p.NumFrames)
	assert.Equal(t, 1.0, p.SilenceRatio)
	assert.Equal(t, 0.0, p.SNREstimate)

	v := NewValidator(NewWAVDecoder(), DefaultThresholds())
	_, issues, err := v.Validate(path)
	require.NoError(t, err)
	assert.Equal(t, []string{IssueSignalTooWeak, IssueTooMuchSilence, IssueNotMono}, issues)
}

func TestWAVDecoderErrors(t *testing.T) {
	dir := t.TempDir()
	d := NewWAVDecoder()

	_, err := d.Probe(filepath.Join(dir, "missing.wav"))
	assert.True(t, errors.Is(err, ErrNotFound))

	junk := filepath.Join(dir, "junk.wav")
	require.NoError(t, os.WriteFile(junk, []byte("not a riff file at all"), 0o644))
	_, err = d.Probe(junk)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	p, err := d.Probe("gs://bucket/raw/ta/clip.wav")
	require.NoError(t, err)
	assert.Equal(t, Simulate("clip.wav"), p)
}

func TestValidatorCheck(t *testing.T) {
	v := NewValidator(&Simulator{}, DefaultThresholds())
	good := Properties{SampleRate: 16000, Duration: 3, NumChannels: 1, AmplitudeMean: 0.1, SilenceRatio: 0.2}

	tests := []struct {
		name   string
		mutate func(*Properties)
		want   []string
	}{
		{"valid", func(p *Properties) {}, nil},
		{"low rate", func(p *Properties) { p.SampleRate = 4000 }, []string{IssueSampleRateTooLow}},
		{"high rate", func(p *Properties) { p.SampleRate = 96000 }, []string{IssueSampleRateTooHigh}},
		{"short", func(p *Properties) { p.Duration = 0.2 }, []string{IssueDurationTooShort}},
		{"long", func(p *Properties) { p.Duration = 20 }, []string{IssueDurationTooLong}},
		{"weak", func(p *Properties) { p.AmplitudeMean = 0 }, []string{IssueSignalTooWeak}},
		{"silent", func(p *Properties) { p.SilenceRatio = 0.9 }, []string{IssueTooMuchSilence}},
		{"stereo", func(p *Properties) { p.NumChannels = 2 }, []string{IssueNotMono}},
		{"bounds inclusive", func(p *Properties) {
			p.SampleRate = 48000
			p.Duration = 15
			p.SilenceRatio = 0.8
		}, nil},
		{"several", func(p *Properties) {
			p.SampleRate = 4000
			p.Duration = 30
			p.NumChannels = 2
		}, []string{IssueSampleRateTooLow, IssueDurationTooLong, IssueNotMono}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := good
			tt.mutate(&p)
			assert.Equal(t, tt.want, v.Check(p))
		})
	}
}

type failingProvider struct{ err error }

func (f failingProvider) Probe(string) (Properties, error) { return Properties{}, f.err }

func TestValidatorPropagatesProviderError(t *testing.T) {
	boom := errors.New("decode failed")
	_, issues, err := NewValidator(failingProvider{boom}, DefaultThresholds()).Validate("x.wav")
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, issues)
}
