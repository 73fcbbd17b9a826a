package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/sightreadpro-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/observability"
	"github.com/yungbote/sightreadpro-backend/internal/platform/objectstore"
	"github.com/yungbote/sightreadpro-backend/internal/scores"
)

var uploadTime = time.Date(2026, 9, 14, 9, 30, 5, 0, time.UTC)

func newIngestion(t *testing.T, objects objectstore.Store, parser scores.Parser, cfg IngestionConfig) (IngestionService, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetrics()
	svc := NewIngestionService(testutil.Logger(t), objects, parser, m, cfg)
	impl := svc.(*ingestionService)
	impl.now = func() time.Time { return uploadTime }
	impl.newID = func() string { return "3f2a9c1e-0b7d-4e55-9a10-1234567890ab" }
	return svc, m
}

func localObjects(t *testing.T) *objectstore.LocalStore {
	t.Helper()
	ls, err := objectstore.NewLocalStore(t.TempDir(), testutil.Logger(t))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return ls
}

func scoreXML(measures int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="4.0"><part-list><score-part id="P1"><part-name>Piano</part-name></score-part></part-list><part id="P1">`)
	for i := 1; i <= measures; i++ {
		fmt.Fprintf(&b, `<measure number="%d">`, i)
		if i == 1 {
			b.WriteString(`<attributes><divisions>1</divisions><key><fifths>1</fifths></key><time><beats>3</beats><beat-type>4</beat-type></time></attributes>`)
		}
		b.WriteString(`<note><pitch><step>G</step><octave>4</octave></pitch><duration>3</duration><type>half</type></note></measure>`)
	}
	b.WriteString(`</part></score-partwise>`)
	return b.String()
}

func metricsText(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	return buf.String()
}

func TestUploadMusicXMLGeneratesExercises(t *testing.T) {
	objects := localObjects(t)
	svc, m := newIngestion(t, objects, scores.NewMusicXMLParser(testutil.Logger(t)), IngestionConfig{})

	body := scoreXML(12)
	res, err := svc.Upload(context.Background(), UploadInput{Filename: "minuet.musicxml", Body: strings.NewReader(body)})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Filename != "20260914_093005_3f2a9c1e.musicxml" {
		t.Fatalf("stored name: %q", res.Filename)
	}
	if res.FileType != types.FileTypeMusicXML || res.ParseStatus != ParseStatusParsed || res.SizeBytes != int64(len(body)) {
		t.Fatalf("result: %+v", res)
	}
	if len(res.Exercises) != 3 {
		t.Fatalf("exercises: got %d want 3", len(res.Exercises))
	}
	want := []struct {
		measures   string
		difficulty types.Difficulty
		xp         int
	}{
		{"1-4", types.DifficultyEasy, 10},
		{"5-8", types.DifficultyMedium, 15},
		{"9-12", types.DifficultyHard, 20},
	}
	for i, w := range want {
		ex := res.Exercises[i]
		if ex.ID != int64(i+1) || ex.Measures != w.measures || ex.Difficulty != w.difficulty || ex.XPReward != w.xp {
			t.Fatalf("exercise %d: %+v", i, ex)
		}
		if ex.KeySignature != "G" || ex.TimeSignature != "3/4" {
			t.Fatalf("exercise %d facts: %s %s", i, ex.KeySignature, ex.TimeSignature)
		}
	}
	if !strings.Contains(res.Message, "Generated 3 exercises") {
		t.Fatalf("message: %q", res.Message)
	}

	saved, err := os.ReadFile(filepath.Join(objects.Dir(), res.Filename))
	if err != nil || string(saved) != body {
		t.Fatalf("stored bytes differ (err=%v)", err)
	}
	if !strings.Contains(metricsText(t, m), `sightread_uploads_total{file_type="musicxml",parse_status="parsed"} 1`) {
		t.Fatalf("upload metric missing:\n%s", metricsText(t, m))
	}
}

func TestUploadParseFailureFallsBack(t *testing.T) {
	cases := []struct {
		name   string
		parser *fakeParser
	}{
		{"parser error", &fakeParser{err: scores.ErrNotScore}},
		{"zero measures", &fakeParser{facts: &scores.Facts{KeySignature: "C", TimeSignature: "4/4"}}},
		{"no facts", &fakeParser{}},
		{"parser panic", &fakeParser{panics: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			objects := localObjects(t)
			svc, _ := newIngestion(t, objects, tc.parser, IngestionConfig{})
			res, err := svc.Upload(context.Background(), UploadInput{Filename: "broken.xml", Body: strings.NewReader("<html/>")})
			if err != nil {
				t.Fatalf("Upload: %v", err)
			}
			if res.ParseStatus != ParseStatusFallback || res.ParseError == "" || res.FileType != types.FileTypeXML {
				t.Fatalf("result: %+v", res)
			}
			if len(res.Exercises) != 1 || res.Exercises[0].Title != "Fallback Exercise" || res.Exercises[0].Measures != "1-4" {
				t.Fatalf("fallback: %+v", res.Exercises)
			}
			if ok, _ := objects.Exists(context.Background(), res.Filename); !ok {
				t.Fatalf("file should be kept after a parse failure")
			}
		})
	}
}

func TestUploadNonScoreSkipsParser(t *testing.T) {
	parser := &fakeParser{}
	svc, _ := newIngestion(t, localObjects(t), parser, IngestionConfig{})

	for _, name := range []string{"etude.pdf", "page.PNG", "notes.txt"} {
		res, err := svc.Upload(context.Background(), UploadInput{Filename: name, Body: strings.NewReader("%PDF-1.4")})
		if err != nil {
			t.Fatalf("Upload(%s): %v", name, err)
		}
		if res.ParseStatus != ParseStatusNotApplicable || res.Exercises != nil {
			t.Fatalf("Upload(%s): %+v", name, res)
		}
		if !strings.Contains(res.Message, "Saved as "+res.Filename) {
			t.Fatalf("message: %q", res.Message)
		}
	}
	if parser.calls != 0 {
		t.Fatalf("parser called %d times", parser.calls)
	}
}

func TestUploadRejections(t *testing.T) {
	objects := localObjects(t)
	svc, _ := newIngestion(t, objects, &fakeParser{}, IngestionConfig{MaxBytes: 16})
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{Filename: "", Body: strings.NewReader("x")})
	expectInvalidField(t, err, "file")
	_, err = svc.Upload(ctx, UploadInput{Filename: "big.pdf", Body: strings.NewReader(strings.Repeat("x", 17))})
	expectCode(t, err, 400, "file_too_large")

	res, err := svc.Upload(ctx, UploadInput{Filename: "fits.pdf", Body: strings.NewReader(strings.Repeat("x", 16))})
	if err != nil || res.SizeBytes != 16 {
		t.Fatalf("exact limit: %+v err=%v", res, err)
	}

	list, err := svc.ListFiles(ctx)
	if err != nil || list.TotalCount != 1 {
		t.Fatalf("only the accepted upload should be stored: %+v err=%v", list, err)
	}
}

func TestUploadStorageFailure(t *testing.T) {
	objects := localObjects(t)
	svc, _ := newIngestion(t, failingStore{Store: objects, err: errors.New("disk full")}, &fakeParser{}, IngestionConfig{})

	_, err := svc.Upload(context.Background(), UploadInput{Filename: "a.pdf", Body: strings.NewReader("data")})
	expectCode(t, err, 500, "upload_failed")

	infos, err := objects.List(context.Background())
	if err != nil || len(infos) != 0 {
		t.Fatalf("nothing should be stored: %v err=%v", infos, err)
	}
}

func TestListAndDeleteFiles(t *testing.T) {
	objects := localObjects(t)
	svc, _ := newIngestion(t, objects, &fakeParser{err: scores.ErrNotScore}, IngestionConfig{})
	ctx := context.Background()

	impl := svc.(*ingestionService)
	ids := []string{"aaaaaaaa", "bbbbbbbb"}
	var names []string
	for i, name := range []string{"one.pdf", "two.musicxml"} {
		id := ids[i]
		impl.newID = func() string { return id }
		res, err := svc.Upload(ctx, UploadInput{Filename: name, Body: strings.NewReader("content")})
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		names = append(names, res.Filename)
	}

	list, err := svc.ListFiles(ctx)
	if err != nil || list.TotalCount != 2 {
		t.Fatalf("ListFiles: %+v err=%v", list, err)
	}
	if list.Files[0].Filename != names[0] || list.Files[0].FileType != types.FileTypePDF || list.Files[0].SizeBytes != 7 {
		t.Fatalf("first file: %+v", list.Files[0])
	}
	if list.Files[1].FileType != types.FileTypeMusicXML {
		t.Fatalf("second file: %+v", list.Files[1])
	}

	del, err := svc.DeleteFile(ctx, names[0])
	if err != nil || del.Message != "File "+names[0]+" deleted successfully" {
		t.Fatalf("DeleteFile: %+v err=%v", del, err)
	}
	_, err = svc.DeleteFile(ctx, names[0])
	expectCode(t, err, 404, "file_not_found")
	_, err = svc.DeleteFile(ctx, "../secrets.env")
	expectInvalidField(t, err, "filename")

	list, _ = svc.ListFiles(ctx)
	if list.TotalCount != 1 || list.Files[0].Filename != names[1] {
		t.Fatalf("after delete: %+v", list)
	}
}

func TestStoredName(t *testing.T) {
	cases := []struct {
		original, id, want string
	}{
		{"Score.MusicXML", "3f2a9c1e-0b7d-4e55-9a10-1234567890ab", "20260914_093005_3f2a9c1e.MusicXML"},
		{"scan.jpeg", "abc", "20260914_093005_abc.jpeg"},
		{"noext", "12345678-aaaa", "20260914_093005_12345678"},
	}
	for _, tc := range cases {
		if got := StoredName(tc.original, uploadTime, tc.id); got != tc.want {
			t.Fatalf("StoredName(%q): got %q want %q", tc.original, got, tc.want)
		}
	}
}
