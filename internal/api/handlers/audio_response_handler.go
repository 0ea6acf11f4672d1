package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chaimaguesmi/Backend-entretien-audio/internal/models"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/services"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/utils"
)

type AudioResponseHandler struct {
	svc services.AudioResponseService
}

func NewAudioResponseHandler(svc services.AudioResponseService) *AudioResponseHandler {
	return &AudioResponseHandler{svc: svc}
}

type CreateAudioResponseRequest struct {
	CandidateID string   `json:"candidate_id" binding:"required"`
	QuestionID  string   `json:"question_id" binding:"required"`
	FileName    string   `json:"file_name" binding:"required"`
	FileSize    int64    `json:"file_size" binding:"required"`
	Format      string   `json:"format" binding:"required"`
	Duration    *float64 `json:"duration"`
	FileContent string   `json:"file_content" binding:"required"` // base64
}

func (h *AudioResponseHandler) Create(c *gin.Context) {
	var req CreateAudioResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AudioResponseHandler.Create", "invalid request body", err))
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.FileContent)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AudioResponseHandler.Create", "file_content is not valid base64", err))
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), services.AudioResponseInput{
		CandidateID: req.CandidateID,
		QuestionID:  req.QuestionID,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		Format:      req.Format,
		Duration:    req.Duration,
	}, content)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AudioResponseHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AudioResponseHandler) ListByCandidate(c *gin.Context) {
	candidateID := c.Param("candidate_id")

	rows, err := h.svc.ListByCandidate(c.Request.Context(), candidateID)
	if err != nil {
		writeError(c, err)
		return
	}
	count, err := h.svc.CountByCandidate(c.Request.Context(), candidateID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":           count,
		"audio_responses": rows,
	})
}

func (h *AudioResponseHandler) GetByQuestion(c *gin.Context) {
	resp, err := h.svc.GetByQuestion(c.Request.Context(), c.Param("candidate_id"), c.Param("question_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AudioResponseHandler) Update(c *gin.Context) {
	var patch models.AudioResponsePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AudioResponseHandler.Update", "invalid request body", err))
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AudioResponseHandler) Delete(c *gin.Context) {
	deleted, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		writeNotFound(c, "audio response not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Audio response deleted successfully"})
}

type DownloadResponse struct {
	FileName    string `json:"file_name"`
	Content     string `json:"content"` // base64
	ContentType string `json:"content_type"`
}

func (h *AudioResponseHandler) Download(c *gin.Context) {
	dl, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, DownloadResponse{
		FileName:    dl.FileName,
		Content:     base64.StdEncoding.EncodeToString(dl.Content),
		ContentType: dl.ContentType,
	})
}

func (h *AudioResponseHandler) List(c *gin.Context) {
	skip := int64(0)
	if s := c.Query("skip"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			skip = n
		}
	}
	limit := int64(0)
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	rows, total, err := h.svc.ListAll(c.Request.Context(), skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":           total,
		"skip":            skip,
		"count":           len(rows),
		"audio_responses": rows,
	})
}
