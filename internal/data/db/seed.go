package db

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/sightreadpro-backend/internal/domain/practice"
)

//go:embed seed/exercises.yaml
var defaultSeed []byte

type seedFile struct {
	Exercises []seedExercise `yaml:"exercises"`
}

type seedExercise struct {
	Measures      string   `yaml:"measures"`
	Difficulty    string   `yaml:"difficulty"`
	Title         string   `yaml:"title"`
	KeySignature  string   `yaml:"key_signature"`
	TimeSignature string   `yaml:"time_signature"`
	Notes         []string `yaml:"notes"`
	RhythmPattern []string `yaml:"rhythm_pattern"`
	XPReward      int      `yaml:"xp_reward"`
}

// LoadSeed parses a seed catalog. An empty path loads the embedded default.
func LoadSeed(path string, now time.Time) ([]*practice.Exercise, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		raw = b
	}
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	out := make([]*practice.Exercise, 0, len(f.Exercises))
	for i, se := range f.Exercises {
		d, err := practice.ParseDifficulty(se.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("seed exercise %d: %w", i, err)
		}
		if se.Measures == "" {
			return nil, fmt.Errorf("seed exercise %d: measures is required", i)
		}
		reward := se.XPReward
		if reward <= 0 {
			reward = 10
		}
		out = append(out, &practice.Exercise{
			Measures:      se.Measures,
			Difficulty:    d,
			Title:         se.Title,
			KeySignature:  se.KeySignature,
			TimeSignature: se.TimeSignature,
			Notes:         se.Notes,
			RhythmPattern: se.RhythmPattern,
			XPReward:      reward,
			CreatedAt:     now,
		})
	}
	return out, nil
}

// SeedExercises inserts exercises only when the catalog is empty. It returns
// the number of rows inserted.
func SeedExercises(db *gorm.DB, exercises []*practice.Exercise) (int, error) {
	inserted := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&practice.Exercise{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 || len(exercises) == 0 {
			return nil
		}
		if err := tx.Create(&exercises).Error; err != nil {
			return err
		}
		inserted = len(exercises)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed exercises: %w", err)
	}
	return inserted, nil
}
