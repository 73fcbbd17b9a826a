package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sightreadpro-backend/internal/http/response"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
	"github.com/yungbote/sightreadpro-backend/internal/services"
)

type UploadHandler struct {
	log       *logger.Logger
	ingestion services.IngestionService
}

func NewUploadHandler(log *logger.Logger, ingestion services.IngestionService) *UploadHandler {
	return &UploadHandler{
		log:       log.With("handler", "UploadHandler"),
		ingestion: ingestion,
	}
}

// POST /upload/score (multipart form, field "file")
func (h *UploadHandler) UploadScore(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", errors.New("multipart field \"file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "upload_read_failed", err)
		return
	}
	defer f.Close()

	out, err := h.ingestion.Upload(c.Request.Context(), services.UploadInput{
		Filename: fh.Filename,
		Body:     f,
	})
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /upload/files
func (h *UploadHandler) ListFiles(c *gin.Context) {
	out, err := h.ingestion.ListFiles(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /upload/files/:filename
func (h *UploadHandler) DeleteFile(c *gin.Context) {
	out, err := h.ingestion.DeleteFile(c.Request.Context(), c.Param("filename"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
