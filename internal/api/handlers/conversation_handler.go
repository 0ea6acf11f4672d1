package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaimaguesmi/Backend-entretien-audio/internal/models"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/services"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/utils"
)

type ConversationHandler struct {
	svc services.ConversationService
}

func NewConversationHandler(svc services.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type CreateConversationRequest struct {
	CandidateID        string           `json:"candidate_id" binding:"required"`
	JobTitle           string           `json:"job_title" binding:"required"`
	CompanyName        string           `json:"company_name" binding:"required"`
	InterviewPhase     string           `json:"interview_phase"`
	QuestionCategories []map[string]any `json:"question_categories"`
}

func (h *ConversationHandler) Create(c *gin.Context) {
	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ConversationHandler.Create", "invalid request body", err))
		return
	}

	conv, err := h.svc.Create(c.Request.Context(), services.ConversationInput{
		CandidateID:        req.CandidateID,
		JobTitle:           req.JobTitle,
		CompanyName:        req.CompanyName,
		InterviewPhase:     req.InterviewPhase,
		QuestionCategories: req.QuestionCategories,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conv)
}

func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) Update(c *gin.Context) {
	var patch models.ConversationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ConversationHandler.Update", "invalid request body", err))
		return
	}

	conv, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

type AddMessageRequest struct {
	Sender   string   `json:"sender" binding:"required"`
	Content  *string  `json:"content"`
	AudioURL *string  `json:"audio_url"`
	FileName *string  `json:"file_name"`
	FileSize *int64   `json:"file_size"`
	Duration *float64 `json:"duration"`
	Format   *string  `json:"format"`
}

func (h *ConversationHandler) AddMessage(c *gin.Context) {
	var req AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ConversationHandler.AddMessage", "invalid request body", err))
		return
	}

	conv, err := h.svc.AddMessage(c.Request.Context(), c.Param("id"), services.MessageInput{
		Sender:   req.Sender,
		Content:  req.Content,
		AudioURL: req.AudioURL,
		FileName: req.FileName,
		FileSize: req.FileSize,
		Duration: req.Duration,
		Format:   req.Format,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"conversation": conv,
		"message":      "Message added successfully",
	})
}

func (h *ConversationHandler) ListByCandidate(c *gin.Context) {
	rows, err := h.svc.ListByCandidate(c.Request.Context(), c.Param("candidate_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":         len(rows),
		"conversations": rows,
	})
}

func (h *ConversationHandler) GetActive(c *gin.Context) {
	conv, err := h.svc.GetActiveByCandidate(c.Request.Context(), c.Param("candidate_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	deleted, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		writeNotFound(c, "conversation not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}
