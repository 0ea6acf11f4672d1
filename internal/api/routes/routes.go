package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/chaimaguesmi/Backend-entretien-audio/internal/api/handlers"
)

type Deps struct {
	AudioResponse *handlers.AudioResponseHandler
	Conversation  *handlers.ConversationHandler
	AudioMessage  *handlers.AudioMessageHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "careere-audio-responses",
			"version": "1.0.0",
		})
	})

	r.POST("/audio-responses", d.AudioResponse.Create)
	r.GET("/audio-responses", d.AudioResponse.List)
	r.GET("/audio-responses/:id", d.AudioResponse.Get)
	r.PUT("/audio-responses/:id", d.AudioResponse.Update)
	r.DELETE("/audio-responses/:id", d.AudioResponse.Delete)
	r.GET("/audio-responses/:id/download", d.AudioResponse.Download)
	r.GET("/audio-responses/candidate/:candidate_id", d.AudioResponse.ListByCandidate)
	r.GET("/audio-responses/candidate/:candidate_id/question/:question_id", d.AudioResponse.GetByQuestion)

	r.POST("/conversations", d.Conversation.Create)
	r.GET("/conversations/:id", d.Conversation.Get)
	r.PUT("/conversations/:id", d.Conversation.Update)
	r.DELETE("/conversations/:id", d.Conversation.Delete)
	r.POST("/conversations/:id/messages", d.Conversation.AddMessage)
	r.GET("/conversations/candidate/:candidate_id", d.Conversation.ListByCandidate)
	r.GET("/conversations/candidate/:candidate_id/active", d.Conversation.GetActive)

	r.POST("/audio-messages", d.AudioMessage.Create)
	r.GET("/audio-messages", d.AudioMessage.List)
	r.DELETE("/audio-messages/:message_id", d.AudioMessage.Delete)
}
