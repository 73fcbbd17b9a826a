package scores

import (
	"context"
	"errors"
	"io"
)

// Facts are the score-level properties exercise generation needs.
type Facts struct {
	KeySignature  string `json:"key_signature"`
	TimeSignature string `json:"time_signature"`
	MeasureCount  int    `json:"measure_count"`
}

var (
	ErrNotScore   = errors.New("document is not a MusicXML score")
	ErrNoMeasures = errors.New("score has no measures")
)

// Parser extracts Facts from a score document.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) (*Facts, error)
}

const (
	DefaultKey  = "C"
	DefaultTime = "4/4"
)
