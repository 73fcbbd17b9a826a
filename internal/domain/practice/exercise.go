package practice

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every difficulty in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// XPReward is the reward attached to generated exercises of this difficulty.
func (d Difficulty) XPReward() int {
	switch d {
	case DifficultyMedium:
		return 15
	case DifficultyHard:
		return 20
	default:
		return 10
	}
}

// ParseDifficulty matches raw exactly (after trimming) against the enum.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.TrimSpace(raw))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q (allowed: easy, medium, hard)", raw)
	}
	return d, nil
}

type Exercise struct {
	ID            int64                       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Measures      string                      `gorm:"column:measures;not null" json:"measures"`
	Difficulty    Difficulty                  `gorm:"column:difficulty;not null;index" json:"difficulty"`
	Title         string                      `gorm:"column:title" json:"title,omitempty"`
	KeySignature  string                      `gorm:"column:key_signature" json:"key_signature,omitempty"`
	TimeSignature string                      `gorm:"column:time_signature" json:"time_signature,omitempty"`
	Notes         datatypes.JSONSlice[string] `gorm:"column:notes;type:text" json:"notes,omitempty"`
	RhythmPattern datatypes.JSONSlice[string] `gorm:"column:rhythm_pattern;type:text" json:"rhythm_pattern,omitempty"`
	XPReward      int                         `gorm:"column:xp_reward;not null;default:10" json:"xp_reward"`
	CreatedAt     time.Time                   `gorm:"column:created_at" json:"created_at"`
}

func (Exercise) TableName() string { return "exercises" }
