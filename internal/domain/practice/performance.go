package practice

import (
	"time"

	"gorm.io/datatypes"
)

// Limits on the open-ended performance_data payload.
const (
	MaxPerformanceDataKeys   = 64
	MaxPerformanceDataKeyLen = 64
	MaxPerformanceDataBytes  = 16 << 10
)

type Performance struct {
	ID                  int64                       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID              string                      `gorm:"column:user_id;not null;index:idx_performances_user_id" json:"user_id"`
	ExerciseID          int64                       `gorm:"column:exercise_id;not null;index:idx_performances_exercise_id" json:"exercise_id"`
	Score               int                         `gorm:"column:score;not null" json:"score"`
	Accuracy            *float64                    `gorm:"column:accuracy" json:"accuracy,omitempty"`
	RhythmScore         *float64                    `gorm:"column:rhythm_score" json:"rhythm_score,omitempty"`
	TempoScore          *float64                    `gorm:"column:tempo_score" json:"tempo_score,omitempty"`
	PracticeTimeSeconds *int                        `gorm:"column:practice_time_seconds" json:"practice_time_seconds,omitempty"`
	MistakesCount       *int                        `gorm:"column:mistakes_count" json:"mistakes_count,omitempty"`
	NotesPlayed         datatypes.JSONSlice[string] `gorm:"column:notes_played;type:text" json:"notes_played,omitempty"`
	PerformanceData     datatypes.JSONMap           `gorm:"column:performance_data;type:text" json:"performance_data,omitempty"`
	SubmittedAt         time.Time                   `gorm:"column:submitted_at;index:idx_performances_submitted_at" json:"submitted_at"`
}

func (Performance) TableName() string { return "performances" }
