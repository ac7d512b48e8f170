package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sikshyahq/sikshya-backend/internal/logger"
	"github.com/sikshyahq/sikshya-backend/internal/repos"
	"github.com/sikshyahq/sikshya-backend/internal/requestdata"
	"github.com/sikshyahq/sikshya-backend/internal/services"
)

type ChatHandler struct {
	log         *logger.Logger
	chatService services.ChatRewardService
	tutor       services.TutorService
	messages    repos.MessageRepo
}

func NewChatHandler(
	baseLog *logger.Logger,
	chatService services.ChatRewardService,
	tutorService services.TutorService,
	messageRepo repos.MessageRepo,
) *ChatHandler {
	return &ChatHandler{
		log:         baseLog.With("handler", "ChatHandler"),
		chatService: chatService,
		tutor:       tutorService,
		messages:    messageRepo,
	}
}

// SendMessage persists the student message with its reward inside one
// transaction, then asks the tutor for a reply outside any transaction.
// A tutor failure does not undo the student message.
func (ch *ChatHandler) SendMessage(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var body struct {
		NoteID  string `json:"note_id"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	noteID, err := uuid.Parse(body.NoteID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note_id must be a valid uuid"})
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must not be empty"})
		return
	}

	result, err := ch.chatService.RecordStudentMessage(c.Request.Context(), rd.UserID, noteID, body.Content, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assistant, err := ch.tutor.Respond(c.Request.Context(), rd.UserID, noteID)
	if err != nil {
		ch.log.Warn("Tutor response failed", "note_id", noteID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          result.Message,
		"points_awarded":   result.PointsAwarded,
		"counted":          result.Counted,
		"today_chat_count": result.TodayChatCount,
		"assistant":        assistant,
	})
}

func (ch *ChatHandler) GetMessages(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	noteID, err := uuid.Parse(c.Param("noteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note id must be a valid uuid"})
		return
	}
	messages, err := ch.messages.GetByNoteForUser(c.Request.Context(), nil, noteID, rd.UserID, 100)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
