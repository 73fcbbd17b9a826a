package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/http/response"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
	"github.com/yungbote/sightreadpro-backend/internal/services"
)

type ExerciseHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewExerciseHandler(log *logger.Logger, catalog services.CatalogService) *ExerciseHandler {
	return &ExerciseHandler{
		log:     log.With("handler", "ExerciseHandler"),
		catalog: catalog,
	}
}

// GET /exercises/daily/:user_id?limit&difficulty
func (h *ExerciseHandler) Daily(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	out, err := h.catalog.Daily(c.Request.Context(), c.Param("user_id"), limit, queryDifficulty(c))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /exercises/?limit&offset&difficulty
func (h *ExerciseHandler) List(c *gin.Context) {
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
	out, err := h.catalog.List(c.Request.Context(), limit, offset, queryDifficulty(c))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /exercises/:exercise_id
func (h *ExerciseHandler) Get(c *gin.Context) {
	id, err := pathInt(c, "exercise_id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	ex, err := h.catalog.ByID(c.Request.Context(), int64(id))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, ex)
}

// GET /exercises/difficulty/:difficulty?limit
func (h *ExerciseHandler) ByDifficulty(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	d := types.Difficulty(strings.ToLower(c.Param("difficulty")))
	out, err := h.catalog.ByDifficulty(c.Request.Context(), d, limit)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /exercises/random/:count?difficulty
func (h *ExerciseHandler) Random(c *gin.Context) {
	count, err := pathInt(c, "count")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	out, err := h.catalog.Random(c.Request.Context(), count, queryDifficulty(c))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /exercises/search/:query?limit
func (h *ExerciseHandler) Search(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	out, err := h.catalog.Search(c.Request.Context(), c.Param("query"), limit)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /exercises/stats/summary
func (h *ExerciseHandler) Summary(c *gin.Context) {
	out, err := h.catalog.Summary(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
