package entities

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// KeptUtterance is an utterance that survived filtering.
type KeptUtterance struct {
	Timestamp string `json:"timestamp"`
	OrderKey  string `json:"order_key"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
}

// NoiseRecord is one discarded utterance as written to the audit trail.
// ID, RunID and CreatedAt are storage columns and stay out of the JSONL line.
type NoiseRecord struct {
	ID         uuid.UUID `json:"-" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RunID      uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	Timestamp  string    `json:"timestamp" gorm:"type:text;not null"`
	OrderKey   string    `json:"order_key" gorm:"type:text;not null"`
	Speaker    string    `json:"speaker" gorm:"type:text;not null"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	Label      Label     `json:"label" gorm:"type:smallint;not null"`
	Confidence float64   `json:"confidence" gorm:"not null"`
	CreatedAt  time.Time `json:"-" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (NoiseRecord) TableName() string {
	return "noise_records"
}

// SortNoiseRecords orders records naturally by order key.
func SortNoiseRecords(records []NoiseRecord) {
	slices.SortStableFunc(records, func(a, b NoiseRecord) int {
		return CompareOrderKeys(a.OrderKey, b.OrderKey)
	})
}

// FilterStats summarizes one filtering pass.
type FilterStats struct {
	TotalTriplets       int     `json:"total_triplets"`
	Kept                int     `json:"kept"`
	Discarded           int     `json:"discarded"`
	NoiseRatio          float64 `json:"noise_ratio"`
	AvgConfidence       float64 `json:"avg_confidence"`
	Unlabeled           int     `json:"unlabeled,omitempty"`
	ClassifierAvailable bool    `json:"classifier_available"`
	AuditFailed         bool    `json:"audit_failed,omitempty"`
}
