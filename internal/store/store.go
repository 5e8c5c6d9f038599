// Package store persists run verdicts in a SQLite database.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/speechprep/internal/pipeline"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const insertBatchSize = 500

// Run is one processed manifest.
type Run struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Source          string    `gorm:"size:1024" json:"source"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	Total           int       `json:"total"`
	Valid           int       `json:"valid"`
	Rejected        int       `json:"rejected"`
}

// Verdict is the stored outcome of one record.
type Verdict struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	RunID          string  `gorm:"size:36;index:idx_verdict_run_pos,priority:1" json:"run_id"`
	Position       int     `gorm:"index:idx_verdict_run_pos,priority:2" json:"position"`
	UtteranceID    string  `gorm:"index" json:"utterance_id"`
	Valid          bool    `json:"valid"`
	Reasons        string  `json:"reasons"`
	OriginalText   string  `json:"original_text"`
	NormalizedText string  `json:"normalized_text"`
	QualityScore   float64 `json:"quality_score"`
	ProcessingMS   float64 `json:"processing_ms"`
}

// Store wraps the database handle.
type Store struct {
	db *gorm.DB
}

// Open opens or creates the database at path and migrates the schema.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open result store %s: %w", path, err)
	}
	// One connection: SQLite serializes writers and every ":memory:"
	// connection would otherwise see its own empty database.
	sqlDB, err := db.DB()
	if err != nil {
		if closer, ok := db.ConnPool.(interface{ Close() error }); ok {
			closer.Close()
		}
		return nil, fmt.Errorf("failed to access result store: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Run{}, &Verdict{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate result store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveBatch stores the run and every verdict in one transaction.
func (s *Store) SaveBatch(ctx context.Context, source string, batch *pipeline.Batch) error {
	run := Run{
		ID:              batch.RunID,
		Source:          source,
		StartedAt:       batch.StartedAt,
		DurationSeconds: batch.Duration.Seconds(),
		Total:           batch.Stats.TotalSamples,
		Valid:           batch.Stats.ValidSamples,
		Rejected:        batch.Stats.RejectedSamples,
	}

	verdicts := make([]Verdict, len(batch.Results))
	for i, res := range batch.Results {
		verdicts[i] = Verdict{
			RunID:          batch.RunID,
			Position:       i,
			UtteranceID:    res.UtteranceID,
			Valid:          res.Valid,
			Reasons:        strings.Join(res.Reasons, "; "),
			OriginalText:   res.OriginalText,
			NormalizedText: res.NormalizedText,
			QualityScore:   res.QualityScore(),
			ProcessingMS:   float64(res.ProcessingTime.Microseconds()) / 1000,
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to store run: %w", err)
		}
		if len(verdicts) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(verdicts, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to store verdicts: %w", err)
		}
		return nil
	})
}

// GetRun returns the run with id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	if err := s.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return &run, nil
}

// Verdicts returns the verdicts of a run in input order.
func (s *Store) Verdicts(ctx context.Context, runID string) ([]Verdict, error) {
	var verdicts []Verdict
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("position").
		Find(&verdicts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load verdicts for run %s: %w", runID, err)
	}
	return verdicts, nil
}
