package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mongorepo "github.com/chaimaguesmi/Backend-entretien-audio/internal/repositories/mongo"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/services"
	"github.com/chaimaguesmi/Backend-entretien-audio/internal/utils"
)

// AudioMessageHandler serves the dual-mode audio message endpoint: append to
// an existing conversation when one is named, start a new one otherwise.
type AudioMessageHandler struct {
	svc services.ConversationService
}

func NewAudioMessageHandler(svc services.ConversationService) *AudioMessageHandler {
	return &AudioMessageHandler{svc: svc}
}

type CreateAudioMessageRequest struct {
	ConversationID string `json:"conversation_id"`

	CandidateID string `json:"candidate_id" binding:"required"`
	JobTitle    string `json:"job_title" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`

	Sender   string   `json:"sender" binding:"required"`
	Content  *string  `json:"content"`
	AudioURL *string  `json:"audio_url"`
	FileName string   `json:"file_name" binding:"required"`
	FileSize int64    `json:"file_size" binding:"required"`
	Duration *float64 `json:"duration"`
	Format   string   `json:"format" binding:"required"`
}

func (h *AudioMessageHandler) Create(c *gin.Context) {
	var req CreateAudioMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AudioMessageHandler.Create", "invalid request body", err))
		return
	}

	conv, err := h.svc.CreateOrAppendAudioMessage(c.Request.Context(), req.ConversationID, services.AudioMessageInput{
		MessageInput: services.MessageInput{
			Sender:   req.Sender,
			Content:  req.Content,
			AudioURL: req.AudioURL,
			FileName: &req.FileName,
			FileSize: &req.FileSize,
			Duration: req.Duration,
			Format:   &req.Format,
		},
		CandidateID: req.CandidateID,
		JobTitle:    req.JobTitle,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"conversation": conv,
		"message":      "Audio message added",
	})
}

func (h *AudioMessageHandler) List(c *gin.Context) {
	msgs, err := h.svc.SearchMessages(c.Request.Context(), mongorepo.MessageFilter{
		CandidateID:    c.Query("candidate_id"),
		ConversationID: c.Query("conversation_id"),
		Sender:         c.Query("sender"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(msgs),
		"messages": msgs,
	})
}

func (h *AudioMessageHandler) Delete(c *gin.Context) {
	messageID := c.Param("message_id")
	if _, err := primitive.ObjectIDFromHex(messageID); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AudioMessageHandler.Delete", "invalid message ID format", err))
		return
	}

	deleted, err := h.svc.DeleteMessage(c.Request.Context(), messageID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		writeNotFound(c, "audio message not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Audio message deleted successfully",
		"message_id": messageID,
	})
}
