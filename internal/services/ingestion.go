package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/observability"
	"github.com/yungbote/sightreadpro-backend/internal/platform/apierr"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
	"github.com/yungbote/sightreadpro-backend/internal/platform/objectstore"
	"github.com/yungbote/sightreadpro-backend/internal/scores"
)

// DefaultUploadMaxBytes caps a single upload at 10MB.
const DefaultUploadMaxBytes int64 = 10 << 20

// ParseStatus tells the caller what happened after the file was saved.
type ParseStatus string

const (
	ParseStatusParsed        ParseStatus = "parsed"
	ParseStatusFallback      ParseStatus = "parse_failed_fallback"
	ParseStatusNotApplicable ParseStatus = "not_applicable"
)

type IngestionService interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
	ListFiles(ctx context.Context) (*FileList, error)
	DeleteFile(ctx context.Context, filename string) (*DeleteResult, error)
}

type IngestionConfig struct {
	MaxBytes  int64
	ChunkSize int
}

type UploadInput struct {
	Filename string
	Body     io.Reader
}

type UploadResult struct {
	Message     string            `json:"message"`
	Filename    string            `json:"filename"`
	FileType    types.FileType    `json:"file_type"`
	SizeBytes   int64             `json:"size_bytes"`
	ParseStatus ParseStatus       `json:"parse_status"`
	ParseError  string            `json:"parse_error,omitempty"`
	Exercises   []*types.Exercise `json:"exercises,omitempty"`
}

type StoredFile struct {
	Filename   string         `json:"filename"`
	FileType   types.FileType `json:"file_type"`
	SizeBytes  int64          `json:"size_bytes"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

type FileList struct {
	Files      []StoredFile `json:"files"`
	TotalCount int          `json:"total_count"`
}

type DeleteResult struct {
	Message string `json:"message"`
}

type ingestionService struct {
	log     *logger.Logger
	objects objectstore.Store
	parser  scores.Parser
	metrics *observability.Metrics
	cfg     IngestionConfig
	now     func() time.Time
	newID   func() string
}

func NewIngestionService(
	baseLog *logger.Logger,
	objects objectstore.Store,
	parser scores.Parser,
	metrics *observability.Metrics,
	cfg IngestionConfig,
) IngestionService {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultUploadMaxBytes
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = types.DefaultChunkSize
	}
	return &ingestionService{
		log:     baseLog.With("service", "IngestionService"),
		objects: objects,
		parser:  parser,
		metrics: metrics,
		cfg:     cfg,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// StoredName builds "<yyyymmdd_hhmmss>_<8 hex>" plus the original extension.
func StoredName(original string, now time.Time, id string) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return now.Format("20060102_150405") + "_" + short + filepath.Ext(original)
}

func (s *ingestionService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	original := strings.TrimSpace(in.Filename)
	if original != "" {
		original = filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	}
	if original == "" || original == "." || original == "/" {
		return nil, apierr.Invalid("file", "No filename provided")
	}
	if in.Body == nil {
		return nil, apierr.Invalid("file", "is required")
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, s.cfg.MaxBytes+1))
	if err != nil {
		return nil, apierr.New(400, "upload_read_failed", fmt.Errorf("failed to read upload: %w", err))
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return nil, apierr.New(400, "file_too_large",
			fmt.Errorf("file exceeds the %d byte upload limit: %w", s.cfg.MaxBytes, apierr.ErrInvalidArgument))
	}

	fileType := types.ClassifyFile(original)
	now := s.now()
	stored := StoredName(original, now, s.newID())

	size, err := s.objects.Put(ctx, stored, bytes.NewReader(data))
	if err != nil {
		s.log.Error("Failed to store upload", "filename", stored, "error", err)
		return nil, apierr.New(500, "upload_failed", fmt.Errorf("failed to upload file: %w", err))
	}

	res := &UploadResult{
		Filename:    stored,
		FileType:    fileType,
		SizeBytes:   size,
		ParseStatus: ParseStatusNotApplicable,
		Message:     "File uploaded successfully. Saved as " + stored,
	}

	if types.IsScoreNotation(original) {
		facts, perr := s.parseScore(ctx, data)
		if perr == nil && (facts == nil || facts.MeasureCount <= 0) {
			perr = scores.ErrNoMeasures
		}
		if perr != nil {
			s.log.Warn("Score parsing failed, using fallback exercise", "filename", stored, "error", perr)
			res.ParseStatus = ParseStatusFallback
			res.ParseError = perr.Error()
			res.Exercises = []*types.Exercise{types.FallbackExercise(now)}
			res.Message = "File uploaded but parsing failed; returned a fallback exercise."
		} else {
			res.ParseStatus = ParseStatusParsed
			res.Exercises = types.GenerateExercises(facts.KeySignature, facts.TimeSignature, facts.MeasureCount, s.cfg.ChunkSize, now)
			res.Message = fmt.Sprintf("MusicXML file uploaded and parsed successfully. Generated %d exercises.", len(res.Exercises))
		}
	}

	s.metrics.ObserveUpload(string(fileType), string(res.ParseStatus), size)
	s.log.Info("Score uploaded",
		"filename", stored,
		"original_filename", original,
		"file_type", fileType,
		"size_bytes", size,
		"parse_status", res.ParseStatus,
		"exercises", len(res.Exercises),
	)
	return res, nil
}

// parseScore runs the parser and reports a panic as a parse failure.
func (s *ingestionService) parseScore(ctx context.Context, data []byte) (facts *scores.Facts, err error) {
	defer func() {
		if r := recover(); r != nil {
			facts, err = nil, fmt.Errorf("parse score: panic: %v", r)
		}
	}()
	return s.parser.Parse(ctx, bytes.NewReader(data))
}

func (s *ingestionService) ListFiles(ctx context.Context) (*FileList, error) {
	infos, err := s.objects.List(ctx)
	if err != nil {
		return nil, apierr.Storage("list files", err)
	}
	files := make([]StoredFile, 0, len(infos))
	for _, fi := range infos {
		files = append(files, StoredFile{
			Filename:   fi.Name,
			FileType:   types.ClassifyFile(fi.Name),
			SizeBytes:  fi.Size,
			UploadedAt: fi.ModTime,
		})
	}
	return &FileList{Files: files, TotalCount: len(files)}, nil
}

func (s *ingestionService) DeleteFile(ctx context.Context, filename string) (*DeleteResult, error) {
	if err := objectstore.ValidateName(filename); err != nil {
		return nil, apierr.Invalid("filename", "must be a plain file name")
	}
	err := s.objects.Delete(ctx, filename)
	switch {
	case errors.Is(err, objectstore.ErrNotExist):
		return nil, apierr.New(404, "file_not_found", fmt.Errorf("file not found: %w", apierr.ErrNotFound))
	case err != nil:
		return nil, apierr.Storage("delete file", err)
	}
	s.log.Info("Deleted upload", "filename", filename)
	return &DeleteResult{Message: fmt.Sprintf("File %s deleted successfully", filename)}, nil
}
