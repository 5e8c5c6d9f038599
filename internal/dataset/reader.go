// Package dataset reads input manifests and writes run outputs.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grovetools/speechprep/internal/pipeline"
)

// RequiredColumns must all be present in a manifest header.
var RequiredColumns = []string{
	pipeline.FieldUtteranceID,
	pipeline.FieldAudioPath,
	pipeline.FieldLanguage,
	pipeline.FieldTranscriptionRaw,
	pipeline.FieldDurationSec,
}

// MissingColumnsError is returned before any record is read when the header
// lacks required columns.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Manifest is a parsed input table.
type Manifest struct {
	Columns []string
	Records []pipeline.Record
}

// ReadFile reads the CSV manifest at path.
func ReadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		var missing *MissingColumnsError
		if errors.As(err, &missing) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return m, nil
}

// Read parses a CSV manifest. Blank and NaN cells become absent fields.
func Read(r io.Reader) (*Manifest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &MissingColumnsError{Missing: RequiredColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	m := &Manifest{Columns: header}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(m.Records)+2, err)
		}
		m.Records = append(m.Records, pipeline.NewRecord(header, row))
	}
	return m, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
