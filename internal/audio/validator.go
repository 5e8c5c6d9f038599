package audio

// Issue codes reported by Validator.Check.
const (
	IssueSampleRateTooLow  = "sample_rate_too_low"
	IssueSampleRateTooHigh = "sample_rate_too_high"
	IssueDurationTooShort  = "duration_too_short"
	IssueDurationTooLong   = "duration_too_long"
	IssueSignalTooWeak     = "signal_too_weak"
	IssueTooMuchSilence    = "too_much_silence"
	IssueNotMono           = "not_mono"
)

// Thresholds bound acceptable audio.
type Thresholds struct {
	MinSampleRate   int
	MaxSampleRate   int
	MinDuration     float64
	MaxDuration     float64
	MinAmplitude    float64
	MaxSilenceRatio float64
	Channels        int
}

// DefaultThresholds returns the standard acceptance envelope.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSampleRate:   8000,
		MaxSampleRate:   48000,
		MinDuration:     0.5,
		MaxDuration:     15.0,
		MinAmplitude:    1e-6,
		MaxSilenceRatio: 0.8,
		Channels:        1,
	}
}

// Validator probes references and checks their properties.
type Validator struct {
	provider   Provider
	thresholds Thresholds
}

// NewValidator creates a validator over provider.
func NewValidator(provider Provider, thresholds Thresholds) *Validator {
	return &Validator{provider: provider, thresholds: thresholds}
}

// Validate probes ref and returns its properties with any threshold issues.
// A provider error is returned unchanged.
func (v *Validator) Validate(ref string) (Properties, []string, error) {
	props, err := v.provider.Probe(ref)
	if err != nil {
		return Properties{}, nil, err
	}
	return props, v.Check(props), nil
}

// Check returns one issue code per violated threshold, in a fixed order.
func (v *Validator) Check(p Properties) []string {
	t := v.thresholds
	var issues []string

	if p.SampleRate < t.MinSampleRate {
		issues = append(issues, IssueSampleRateTooLow)
	} else if p.SampleRate > t.MaxSampleRate {
		issues = append(issues, IssueSampleRateTooHigh)
	}

	if p.Duration < t.MinDuration {
		issues = append(issues, IssueDurationTooShort)
	} else if p.Duration > t.MaxDuration {
		issues = append(issues, IssueDurationTooLong)
	}

	if p.AmplitudeMean < t.MinAmplitude {
		issues = append(issues, IssueSignalTooWeak)
	}
	if p.SilenceRatio > t.MaxSilenceRatio {
		issues = append(issues, IssueTooMuchSilence)
	}
	if p.NumChannels != t.Channels {
		issues = append(issues, IssueNotMono)
	}
	return issues
}
