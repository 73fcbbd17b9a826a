package scores

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

// MusicXMLParser reads uncompressed MusicXML (partwise or timewise).
//
// Measures are counted in the first part. Key and time come from the first
// <key> and <time> elements found, falling back to C and 4/4.
type MusicXMLParser struct {
	log *logger.Logger
}

func NewMusicXMLParser(log *logger.Logger) *MusicXMLParser {
	return &MusicXMLParser{log: log.With("service", "MusicXMLParser")}
}

type keyElem struct {
	Fifths string `xml:"fifths"`
	Mode   string `xml:"mode"`
}

type timeElem struct {
	Beats    string `xml:"beats"`
	BeatType string `xml:"beat-type"`
}

func (p *MusicXMLParser) Parse(ctx context.Context, r io.Reader) (*Facts, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }

	var (
		root     string
		stack    []string
		parts    int
		measures int
		key      *keyElem
		timeSig  *timeElem
		tokens   int
	)

scan:
	for {
		if tokens++; tokens%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse musicxml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			name := el.Name.Local
			if root == "" {
				if name != "score-partwise" && name != "score-timewise" {
					return nil, fmt.Errorf("%w: root element <%s>", ErrNotScore, name)
				}
				root = name
				stack = append(stack, name)
				continue
			}

			switch {
			case name == "key" && key == nil:
				var k keyElem
				if err := dec.DecodeElement(&k, &el); err != nil {
					return nil, fmt.Errorf("parse <key>: %w", err)
				}
				key = &k
				continue
			case name == "time" && timeSig == nil:
				var t timeElem
				if err := dec.DecodeElement(&t, &el); err != nil {
					return nil, fmt.Errorf("parse <time>: %w", err)
				}
				timeSig = &t
				continue
			}

			parent := stack[len(stack)-1]
			if root == "score-partwise" {
				if name == "part" && parent == root {
					parts++
				}
				if name == "measure" && parent == "part" && len(stack) == 2 && parts == 1 {
					measures++
				}
			} else if name == "measure" && parent == root {
				measures++
			}
			stack = append(stack, name)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			// Anything after the root element is not part of the score.
			if root != "" && len(stack) == 0 {
				break scan
			}
		}
	}

	if root == "" {
		return nil, ErrNotScore
	}
	if measures == 0 {
		return nil, ErrNoMeasures
	}

	facts := &Facts{
		KeySignature:  keyName(key),
		TimeSignature: timeName(timeSig),
		MeasureCount:  measures,
	}
	p.log.Debug("Parsed MusicXML", "key", facts.KeySignature, "time", facts.TimeSignature, "measures", facts.MeasureCount)
	return facts, nil
}

var (
	majorTonics = [...]string{"Cb", "Gb", "Db", "Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
	minorTonics = [...]string{"Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#", "G#", "D#", "A#"}
)

// keyName maps a circle-of-fifths position to the tonic name.
func keyName(k *keyElem) string {
	if k == nil {
		return DefaultKey
	}
	fifths, err := strconv.Atoi(strings.TrimSpace(k.Fifths))
	if err != nil || fifths < -7 || fifths > 7 {
		return DefaultKey
	}
	if strings.EqualFold(strings.TrimSpace(k.Mode), "minor") {
		return minorTonics[fifths+7]
	}
	return majorTonics[fifths+7]
}

func timeName(t *timeElem) string {
	if t == nil {
		return DefaultTime
	}
	beats := strings.TrimSpace(t.Beats)
	beatType := strings.TrimSpace(t.BeatType)
	if beats == "" || beatType == "" {
		return DefaultTime
	}
	return beats + "/" + beatType
}
