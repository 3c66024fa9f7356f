package entity

import "time"

// SequenceCounter is an atomic per-scope daily counter. Numbers are allocated
// with a single upsert-and-increment; the date in the key makes every counter
// reset implicitly at midnight.
type SequenceCounter struct {
	Scope     string    `gorm:"size:255;primaryKey" json:"scope"`
	Date      string    `gorm:"size:10;primaryKey;column:seq_date" json:"date"` // YYYYMMDD
	Counter   int       `gorm:"not null;default:0" json:"counter"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the SequenceCounter model
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}
