package pipeline

import (
	"errors"
	"testing"

	"github.com/grovetools/speechprep/internal/audio"
	"github.com/grovetools/speechprep/internal/textnorm"
	"github.com/stretchr/testify/assert"
)

func TestRunStatisticsAdd(t *testing.T) {
	s := NewRunStatistics()

	s.Add(Result{
		Valid:         true,
		Normalization: &textnorm.Result{Text: "x", Operations: []string{textnorm.OpUnicodeNFC, textnorm.OpPunctuationNormalized}, EditDistance: 4},
		AudioChecked:  true,
	})
	s.Add(Result{
		Reasons:       []string{"audio_duration_too_long", ReasonLowTextQuality},
		Normalization: &textnorm.Result{Text: "y", Operations: []string{textnorm.OpNumbersExpanded}, EditDistance: 2},
		AudioChecked:  true,
		AudioIssues:   []string{audio.IssueDurationTooLong, audio.IssueSampleRateTooLow},
	})
	s.Add(Result{
		Reasons:      []string{ReasonAudioValidationError},
		AudioChecked: true,
		AudioErr:     audio.ErrNotFound,
	})
	s.Add(Result{
		Reasons:      []string{ReasonAudioValidationError},
		AudioChecked: true,
		AudioErr:     errors.New("truncated"),
	})
	s.Add(Result{Reasons: []string{ReasonMissingAudioPath}})

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.Valid)
	assert.Equal(t, 4, s.Rejected)
	assert.Equal(t, map[string]int{
		"audio_duration_too_long":  1,
		ReasonLowTextQuality:       1,
		ReasonAudioValidationError: 2,
		ReasonMissingAudioPath:     1,
	}, s.Reasons)

	snap := s.Snapshot()
	assert.InDelta(t, 0.2, snap.ValidRatio, 1e-9)

	text := snap.ComponentStats.TextNormalization
	assert.Equal(t, 2, text.TotalProcessed)
	assert.Equal(t, 1, text.UnicodeNormalized)
	assert.Equal(t, 1, text.NumbersExpanded)
	assert.Equal(t, 1, text.PunctuationNormalized)
	assert.Equal(t, 0, text.DiacriticsRemoved)
	assert.Equal(t, 3.0, text.MeanEditDistance)

	a := snap.ComponentStats.AudioValidation
	assert.Equal(t, 4, a.TotalValidated)
	assert.Equal(t, 1, a.ValidFiles)
	assert.Equal(t, 1, a.InvalidFiles)
	assert.Equal(t, 1, a.MissingFiles)
	assert.Equal(t, 1, a.CorruptedFiles)
	assert.Equal(t, 1, a.DurationViolations)
	assert.Equal(t, 1, a.SampleRateViolations)
	assert.Equal(t, 0.25, a.ValidRatio)
	assert.Equal(t, 0.25, a.InvalidRatio)
}

func TestRunStatisticsMergeMatchesSequential(t *testing.T) {
	results := []Result{
		{Valid: true, Normalization: &textnorm.Result{EditDistance: 1}},
		{Reasons: []string{ReasonTooFewWords}},
		{Reasons: []string{ReasonTooFewWords, ReasonLowTextQuality}, AudioChecked: true, AudioIssues: []string{audio.IssueNotMono}},
		{Valid: true, AudioChecked: true},
	}

	sequential := NewRunStatistics()
	for _, r := range results {
		sequential.Add(r)
	}

	left, right := NewRunStatistics(), NewRunStatistics()
	left.Add(results[0])
	left.Add(results[2])
	right.Add(results[1])
	right.Add(results[3])
	left.Merge(right)

	assert.Equal(t, sequential.Snapshot(), left.Snapshot())
}

func TestRunStatisticsReset(t *testing.T) {
	s := NewRunStatistics()
	s.Add(Result{Reasons: []string{ReasonTooFewWords}, AudioChecked: true})
	s.Reset()

	assert.Equal(t, 0, s.Total)
	assert.Empty(t, s.Reasons)
	assert.Equal(t, ComponentStats{}, s.Components)
	assert.Equal(t, 0.0, s.Snapshot().ValidRatio)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewRunStatistics()
	s.Add(Result{Reasons: []string{ReasonTooFewWords}})
	snap := s.Snapshot()
	s.Add(Result{Reasons: []string{ReasonTooFewWords}})

	assert.Equal(t, 1, snap.RejectionReasons[ReasonTooFewWords])
	assert.Equal(t, 2, s.Reasons[ReasonTooFewWords])
}

func TestTopReasons(t *testing.T) {
	snap := Snapshot{RejectionReasons: map[string]int{
		"b": 3,
		"a": 3,
		"c": 5,
		"d": 1,
	}}
	assert.Equal(t, []ReasonCount{{"c", 5}, {"a", 3}, {"b", 3}}, snap.TopReasons(3))
	assert.Len(t, snap.TopReasons(0), 4)
	assert.Empty(t, Snapshot{}.TopReasons(5))
}
