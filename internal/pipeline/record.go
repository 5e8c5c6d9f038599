package pipeline

import "strings"

// Well-known record fields.
const (
	FieldUtteranceID      = "utterance_id"
	FieldAudioPath        = "audio_path"
	FieldLanguage         = "language"
	FieldTranscriptionRaw = "transcription_raw"
	FieldDurationSec      = "duration_sec"
	FieldQualityFlag      = "quality_flag"
)

// Record is one input row. Fields missing from Values are absent; the
// ingestion side coalesces blank and NaN cells to absent before a Record is
// built. Columns keeps the source column order for passthrough output.
type Record struct {
	Columns []string
	Values  map[string]string
}

// NewRecord builds a record from parallel column and cell slices. Blank
// cells and NaN markers are dropped so they read as absent.
func NewRecord(columns, cells []string) Record {
	rec := Record{
		Columns: columns,
		Values:  make(map[string]string, len(columns)),
	}
	for i, col := range columns {
		if i >= len(cells) || IsAbsentValue(cells[i]) {
			continue
		}
		rec.Values[col] = cells[i]
	}
	return rec
}

// IsAbsentValue reports whether a raw cell should be treated as absent.
func IsAbsentValue(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "NaN", "nan", "None", "null", "NULL":
		return true
	}
	return false
}

// Get returns the field value and whether it is present.
func (r Record) Get(field string) (string, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Has reports whether field is present.
func (r Record) Has(field string) bool {
	_, ok := r.Values[field]
	return ok
}

// text returns the trimmed value of field, empty when absent.
func (r Record) text(field string) string {
	return strings.TrimSpace(r.Values[field])
}
