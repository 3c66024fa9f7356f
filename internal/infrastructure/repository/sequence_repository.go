package repository

import (
	"context"

	"gorm.io/gorm"

	domainRepo "github.com/sokoni/eventpos-api/internal/domain/repository"
)

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence counter repository
func NewSequenceRepository(db *gorm.DB) domainRepo.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next allocates the next counter value for (scope, date) with a single
// upsert. The increment happens inside the database, so concurrent callers
// always receive distinct values; counting existing rows instead would hand
// out duplicates under load.
func (r *sequenceRepository) Next(ctx context.Context, scope, date string) (int, error) {
	var counter int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (scope, seq_date, counter, updated_at)
		VALUES (?, ?, 1, NOW())
		ON CONFLICT (scope, seq_date)
		DO UPDATE SET counter = sequence_counters.counter + 1, updated_at = NOW()
		RETURNING counter`,
		scope, date,
	).Scan(&counter).Error
	if err != nil {
		return 0, err
	}
	return counter, nil
}
