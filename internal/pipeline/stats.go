package pipeline

import (
	"errors"
	"sort"

	"github.com/grovetools/speechprep/internal/audio"
	"github.com/grovetools/speechprep/internal/textnorm"
)

// TextStats counts text normalization outcomes.
type TextStats struct {
	TotalProcessed        int     `json:"total_processed"`
	UnicodeNormalized     int     `json:"unicode_normalized"`
	DiacriticsRemoved     int     `json:"diacritics_removed"`
	NumbersExpanded       int     `json:"numbers_expanded"`
	PunctuationNormalized int     `json:"punctuation_normalized"`
	MeanEditDistance      float64 `json:"mean_edit_distance"`

	editDistanceSum int
}

// AudioStats counts audio validation outcomes.
type AudioStats struct {
	TotalValidated       int     `json:"total_validated"`
	ValidFiles           int     `json:"valid_files"`
	InvalidFiles         int     `json:"invalid_files"`
	MissingFiles         int     `json:"missing_files"`
	CorruptedFiles       int     `json:"corrupted_files"`
	DurationViolations   int     `json:"duration_violations"`
	SampleRateViolations int     `json:"sample_rate_violations"`
	ValidRatio           float64 `json:"valid_ratio"`
	InvalidRatio         float64 `json:"invalid_ratio"`
}

// ComponentStats groups the per-component counters.
type ComponentStats struct {
	TextNormalization TextStats  `json:"text_normalization"`
	AudioValidation   AudioStats `json:"audio_validation"`
}

// RunStatistics accumulates counters over a batch run. It is not safe for
// concurrent use; concurrent runs keep one per worker and Merge them.
type RunStatistics struct {
	Total      int
	Valid      int
	Rejected   int
	Reasons    map[string]int
	Components ComponentStats
}

// NewRunStatistics returns empty statistics.
func NewRunStatistics() *RunStatistics {
	return &RunStatistics{Reasons: make(map[string]int)}
}

// Add folds one evaluation result into the counters.
func (s *RunStatistics) Add(r Result) {
	s.Total++
	if r.Valid {
		s.Valid++
	} else {
		s.Rejected++
		for _, reason := range r.Reasons {
			s.Reasons[reason]++
		}
	}

	if n := r.Normalization; n != nil && !n.Empty {
		t := &s.Components.TextNormalization
		t.TotalProcessed++
		t.editDistanceSum += n.EditDistance
		if n.Applied(textnorm.OpUnicodeNFC) {
			t.UnicodeNormalized++
		}
		if n.Applied(textnorm.OpDiacriticsRemoved) {
			t.DiacriticsRemoved++
		}
		if n.Applied(textnorm.OpNumbersExpanded) {
			t.NumbersExpanded++
		}
		if n.Applied(textnorm.OpPunctuationNormalized) {
			t.PunctuationNormalized++
		}
	}

	if r.AudioChecked {
		a := &s.Components.AudioValidation
		a.TotalValidated++
		switch {
		case errors.Is(r.AudioErr, audio.ErrNotFound):
			a.MissingFiles++
		case r.AudioErr != nil:
			a.CorruptedFiles++
		case len(r.AudioIssues) == 0:
			a.ValidFiles++
		default:
			a.InvalidFiles++
			if containsAny(r.AudioIssues, audio.IssueDurationTooShort, audio.IssueDurationTooLong) {
				a.DurationViolations++
			}
			if containsAny(r.AudioIssues, audio.IssueSampleRateTooLow, audio.IssueSampleRateTooHigh) {
				a.SampleRateViolations++
			}
		}
	}
}

// Merge adds the counters of o into s.
func (s *RunStatistics) Merge(o *RunStatistics) {
	s.Total += o.Total
	s.Valid += o.Valid
	s.Rejected += o.Rejected
	for reason, n := range o.Reasons {
		s.Reasons[reason] += n
	}

	t, ot := &s.Components.TextNormalization, o.Components.TextNormalization
	t.TotalProcessed += ot.TotalProcessed
	t.UnicodeNormalized += ot.UnicodeNormalized
	t.DiacriticsRemoved += ot.DiacriticsRemoved
	t.NumbersExpanded += ot.NumbersExpanded
	t.PunctuationNormalized += ot.PunctuationNormalized
	t.editDistanceSum += ot.editDistanceSum

	a, oa := &s.Components.AudioValidation, o.Components.AudioValidation
	a.TotalValidated += oa.TotalValidated
	a.ValidFiles += oa.ValidFiles
	a.InvalidFiles += oa.InvalidFiles
	a.MissingFiles += oa.MissingFiles
	a.CorruptedFiles += oa.CorruptedFiles
	a.DurationViolations += oa.DurationViolations
	a.SampleRateViolations += oa.SampleRateViolations
}

// Reset clears every counter.
func (s *RunStatistics) Reset() {
	*s = RunStatistics{Reasons: make(map[string]int)}
}

// ReasonCount is one entry of the rejection histogram.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Snapshot is a point-in-time copy of the statistics with derived ratios.
type Snapshot struct {
	TotalSamples     int            `json:"total_samples"`
	ValidSamples     int            `json:"valid_samples"`
	RejectedSamples  int            `json:"rejected_samples"`
	ValidRatio       float64        `json:"valid_ratio"`
	RejectionReasons map[string]int `json:"rejection_reasons"`
	ComponentStats   ComponentStats `json:"component_stats"`
}

// Snapshot copies the counters and computes ratios.
func (s *RunStatistics) Snapshot() Snapshot {
	reasons := make(map[string]int, len(s.Reasons))
	for k, v := range s.Reasons {
		reasons[k] = v
	}
	snap := Snapshot{
		TotalSamples:     s.Total,
		ValidSamples:     s.Valid,
		RejectedSamples:  s.Rejected,
		RejectionReasons: reasons,
		ComponentStats:   s.Components,
	}
	if s.Total > 0 {
		snap.ValidRatio = float64(s.Valid) / float64(s.Total)
	}

	t := &snap.ComponentStats.TextNormalization
	if t.TotalProcessed > 0 {
		t.MeanEditDistance = float64(t.editDistanceSum) / float64(t.TotalProcessed)
	}
	a := &snap.ComponentStats.AudioValidation
	if a.TotalValidated > 0 {
		a.ValidRatio = float64(a.ValidFiles) / float64(a.TotalValidated)
		a.InvalidRatio = float64(a.InvalidFiles) / float64(a.TotalValidated)
	}
	return snap
}

// TopReasons returns the n most frequent reasons, most frequent first. Ties
// are ordered by reason code. n <= 0 returns all of them.
func (s Snapshot) TopReasons(n int) []ReasonCount {
	out := make([]ReasonCount, 0, len(s.RejectionReasons))
	for reason, count := range s.RejectionReasons {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func containsAny(list []string, values ...string) bool {
	for _, item := range list {
		for _, v := range values {
			if item == v {
				return true
			}
		}
	}
	return false
}
