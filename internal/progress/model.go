package progress

import (
	"time"

	"github.com/google/uuid"
)

// VideoProgress is the last known playback position of one user on one video
type VideoProgress struct {
	UserID          uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey;index:idx_progress_recent,priority:1"`
	VideoID         uuid.UUID `json:"videoId" gorm:"type:uuid;primaryKey"`
	ProgressSeconds float64   `json:"progressSeconds" gorm:"not null;default:0"`
	DurationSeconds float64   `json:"durationSeconds" gorm:"not null;default:0"`
	Completed       bool      `json:"completed" gorm:"not null;default:false"`
	LastWatchedAt   time.Time `json:"lastWatchedAt" gorm:"not null;index:idx_progress_recent,priority:2"`
}

// TableName specifies the table name for watch progress
func (VideoProgress) TableName() string {
	return "video_progress"
}

// Fraction is the watched share of the video, or zero when the duration is unknown
func (p *VideoProgress) Fraction() float64 {
	if p.DurationSeconds <= 0 {
		return 0
	}
	return p.ProgressSeconds / p.DurationSeconds
}

// Config holds watch-progress settings
type Config struct {
	// CompletionRatio is the watched fraction at which a video counts as completed
	CompletionRatio float64
	// CheckpointInterval is how often players checkpoint during playback
	CheckpointInterval time.Duration
}

// DefaultConfig returns the settings used when none are configured
func DefaultConfig() Config {
	return Config{CompletionRatio: 0.9, CheckpointInterval: 5 * time.Second}
}

// CheckpointRequest is the body of the progress endpoint
type CheckpointRequest struct {
	PositionSeconds float64 `json:"positionSeconds"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// ResumePoint tells a player where to start
type ResumePoint struct {
	VideoID         uuid.UUID `json:"videoId"`
	PositionSeconds float64   `json:"positionSeconds"`
	Resume          bool      `json:"resume"`
	// CheckpointIntervalSeconds tells the player how often to send checkpoints
	CheckpointIntervalSeconds float64 `json:"checkpointIntervalSeconds"`
}
