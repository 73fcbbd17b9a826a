package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sightreadpro-backend/internal/http/response"
	"github.com/yungbote/sightreadpro-backend/internal/platform/apierr"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
	"github.com/yungbote/sightreadpro-backend/internal/services"
)

// maxSubmitBodyBytes bounds a performance submission body.
const maxSubmitBodyBytes = 64 << 10

type UserHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewUserHandler(log *logger.Logger, progress services.ProgressService) *UserHandler {
	return &UserHandler{
		log:      log.With("handler", "UserHandler"),
		progress: progress,
	}
}

// submitPerformanceRequest keeps exercise_id and score raw so only bare JSON
// integers are accepted; "50", 99.5 and true are validation errors.
type submitPerformanceRequest struct {
	UserID              string          `json:"user_id"`
	ExerciseID          json.RawMessage `json:"exercise_id"`
	Score               json.RawMessage `json:"score"`
	Accuracy            *float64       `json:"accuracy"`
	RhythmScore         *float64       `json:"rhythm_score"`
	TempoScore          *float64       `json:"tempo_score"`
	PracticeTimeSeconds *int           `json:"practice_time_seconds"`
	MistakesCount       *int           `json:"mistakes_count"`
	NotesPlayed         []string       `json:"notes_played"`
	PerformanceData     map[string]any `json:"performance_data"`
}

func (r submitPerformanceRequest) toInput() (services.SubmitPerformanceInput, error) {
	in := services.SubmitPerformanceInput{
		UserID:              r.UserID,
		Accuracy:            r.Accuracy,
		RhythmScore:         r.RhythmScore,
		TempoScore:          r.TempoScore,
		PracticeTimeSeconds: r.PracticeTimeSeconds,
		MistakesCount:       r.MistakesCount,
		NotesPlayed:         r.NotesPlayed,
		PerformanceData:     r.PerformanceData,
	}
	if tok, ok := rawInt(r.ExerciseID); ok {
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return in, apierr.Invalid("exercise_id", "must be an integer")
		}
		in.ExerciseID = id
	}
	if tok, ok := rawInt(r.Score); ok {
		score, err := strconv.Atoi(tok)
		if err != nil {
			return in, apierr.Invalid("score", "must be an integer between 0 and 100")
		}
		in.Score = &score
	}
	return in, nil
}

// rawInt returns the token text of a present, non-null field. Quoted values
// are returned as-is so they fail integer parsing.
func rawInt(raw json.RawMessage) (string, bool) {
	tok := strings.TrimSpace(string(raw))
	if tok == "" || tok == "null" {
		return "", false
	}
	return tok, true
}

// POST /users/submit_performance
func (h *UserHandler) SubmitPerformance(c *gin.Context) {
	var req submitPerformanceRequest
	dec := json.NewDecoder(io.LimitReader(c.Request.Body, maxSubmitBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("request body is required"))
			return
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	out, err := h.progress.SubmitPerformance(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /users/:user_id/progress
func (h *UserHandler) Progress(c *gin.Context) {
	out, err := h.progress.Progress(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /users/:user_id/profile
func (h *UserHandler) Profile(c *gin.Context) {
	out, err := h.progress.Profile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /users/:user_id/stats
func (h *UserHandler) Stats(c *gin.Context) {
	out, err := h.progress.Stats(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /users/:user_id/performances?limit&offset
func (h *UserHandler) Performances(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	out, err := h.progress.Performances(c.Request.Context(), c.Param("user_id"), limit, offset)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /users/:user_id/reset
func (h *UserHandler) Reset(c *gin.Context) {
	out, err := h.progress.Reset(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /users/leaderboard?limit
func (h *UserHandler) Leaderboard(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	out, err := h.progress.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
