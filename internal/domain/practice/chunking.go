package practice

import (
	"fmt"
	"time"
)

// DefaultChunkSize is the number of measures per generated exercise.
const DefaultChunkSize = 4

// Placeholder payloads attached to generated exercises. They depend only on
// difficulty, not on the score's content.
var placeholderPayloads = map[Difficulty]struct {
	notes  []string
	rhythm []string
}{
	DifficultyEasy: {
		notes:  []string{"C4", "D4", "E4", "F4"},
		rhythm: []string{"quarter", "quarter", "quarter", "quarter"},
	},
	DifficultyMedium: {
		notes:  []string{"G4", "A4", "B4", "C5", "D5"},
		rhythm: []string{"eighth", "eighth", "quarter", "eighth", "quarter"},
	},
	DifficultyHard: {
		notes:  []string{"F4", "G4", "A4", "B4", "C5", "D5", "E5", "F5"},
		rhythm: []string{"eighth", "eighth", "eighth", "eighth", "eighth", "eighth", "eighth", "eighth"},
	},
}

// ChunkDifficulty grades a chunk starting at zero-based measure start by its
// position in a piece of total measures: first third easy, middle third
// medium, the rest hard.
func ChunkDifficulty(start, total int) Difficulty {
	switch {
	case start < total/3:
		return DifficultyEasy
	case start < 2*total/3:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// GenerateExercises splits measures into chunks of chunkSize (the last may be
// shorter) and returns one exercise per chunk with ids 1..n. The exercises are
// not catalog entries.
func GenerateExercises(keySignature, timeSignature string, measures, chunkSize int, now time.Time) []*Exercise {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if measures <= 0 {
		return []*Exercise{}
	}
	out := make([]*Exercise, 0, (measures+chunkSize-1)/chunkSize)
	for start := 0; start < measures; start += chunkSize {
		end := min(start+chunkSize, measures)
		rng := fmt.Sprintf("%d-%d", start+1, end)
		d := ChunkDifficulty(start, measures)
		payload := placeholderPayloads[d]
		out = append(out, &Exercise{
			ID:            int64(len(out) + 1),
			Measures:      rng,
			Difficulty:    d,
			Title:         "Measures " + rng,
			KeySignature:  keySignature,
			TimeSignature: timeSignature,
			Notes:         append([]string(nil), payload.notes...),
			RhythmPattern: append([]string(nil), payload.rhythm...),
			XPReward:      d.XPReward(),
			CreatedAt:     now,
		})
	}
	return out
}

// FallbackExercise stands in when a score cannot be parsed.
func FallbackExercise(now time.Time) *Exercise {
	payload := placeholderPayloads[DifficultyEasy]
	return &Exercise{
		ID:            1,
		Measures:      "1-4",
		Difficulty:    DifficultyEasy,
		Title:         "Fallback Exercise",
		KeySignature:  "C",
		TimeSignature: "4/4",
		Notes:         append([]string(nil), payload.notes...),
		RhythmPattern: append([]string(nil), payload.rhythm...),
		XPReward:      DifficultyEasy.XPReward(),
		CreatedAt:     now,
	}
}
