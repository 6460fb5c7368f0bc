package models

import "time"

// TrainingRun records one completed per-genre training in the database, for
// operational history. The artifact on disk remains the source of truth for
// generation.
type TrainingRun struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Genre        string    `gorm:"index;not null" json:"genre"`
	Pieces       int       `json:"pieces"`
	VocabSize    int       `json:"vocab_size"`
	Examples     int       `json:"examples"`
	Epochs       int       `json:"epochs"`
	FinalLoss    float64   `json:"final_loss"`
	DurationMS   int64     `json:"duration_ms"`
	ArtifactPath string    `json:"artifact_path"`
	CreatedAt    time.Time `json:"created_at"`
}
