package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"guild/backend/internal/apperr"
	"guild/backend/internal/auth"
	"guild/backend/internal/database"
	"guild/backend/internal/hub"
	"guild/backend/internal/models"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// streamBufferSize is how many events a slow stream may fall behind before it
// starts missing them.
const streamBufferSize = 16

// region --- DTOs ---

// CreateChatInput defines the structure for creating a chat.
type CreateChatInput struct {
	Name         string   `json:"name" binding:"required" example:"Raid night"`
	Participants []string `json:"participants" binding:"required"`
}

// SendMessageInput defines the structure for posting a message.
type SendMessageInput struct {
	Text string `json:"text" binding:"required" example:"hello"`
}

// ChatResponse is the view of a chat returned to its participants.
type ChatResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Participants    []string   `json:"participants"`
	LastMessage     *string    `json:"lastMessage"`
	LastMessageTime *time.Time `json:"lastMessageTime"`
	UnreadCount     int        `json:"unreadCount"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ChatMessageResponse is a chat message with its author's public name.
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func newChatResponse(chat models.Chat) ChatResponse {
	participants := make([]string, 0, len(chat.Participants))
	for _, p := range chat.Participants {
		participants = append(participants, p.ID)
	}
	return ChatResponse{
		ID:              chat.ID,
		Name:            chat.Name,
		Participants:    participants,
		LastMessage:     chat.LastMessage,
		LastMessageTime: chat.LastMessageTime,
		UnreadCount:     chat.UnreadCount,
		CreatedAt:       chat.CreatedAt,
		UpdatedAt:       chat.UpdatedAt,
	}
}

func newChatMessageResponse(message models.Message) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        message.ID,
		ChatID:    message.ChatID,
		UserID:    message.UserID,
		UserName:  message.User.PublicName(),
		Text:      message.Text,
		CreatedAt: message.CreatedAt,
	}
}

// endregion

// loadParticipatingChat fetches the chat named in the path and checks that the
// caller takes part in it.
func loadParticipatingChat(c *gin.Context) (models.Chat, bool) {
	var chat models.Chat
	err := database.DB.WithContext(c.Request.Context()).
		Preload("Participants").
		First(&chat, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.NewNotFound("Chat not found"))
			return chat, false
		}
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve chat"))
		return chat, false
	}

	if !chat.HasParticipant(auth.CurrentUserID(c)) {
		respondError(c, apperr.NewForbidden("You are not a participant of this chat"))
		return chat, false
	}
	return chat, true
}

// GetChats godoc
// @Summary      List chats
// @Description  Lists the chats the caller takes part in, most recently active first.
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ChatResponse
// @Router       /chats [get]
func GetChats(c *gin.Context) {
	var chats []models.Chat
	err := database.DB.WithContext(c.Request.Context()).
		Preload("Participants").
		Joins("JOIN chat_participants ON chat_participants.chat_id = chats.id").
		Where("chat_participants.user_id = ?", auth.CurrentUserID(c)).
		Order("chats.updated_at DESC").
		Find(&chats).Error
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Error fetching chats"))
		return
	}

	responses := make([]ChatResponse, 0, len(chats))
	for _, chat := range chats {
		responses = append(responses, newChatResponse(chat))
	}
	c.JSON(http.StatusOK, responses)
}

// CreateChat godoc
// @Summary      Create a chat
// @Description  Creates a chat between the caller and the given participants.
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateChatInput true "Chat"
// @Success      201  {object}  ChatResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /chats [post]
func CreateChat(c *gin.Context) {
	var input CreateChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Name and participants array are required")
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		badRequest(c, "Name and participants array are required")
		return
	}

	callerID := auth.CurrentUserID(c)
	seen := map[string]bool{callerID: true}
	ids := []string{callerID}
	for _, id := range input.Participants {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	db := database.DB.WithContext(c.Request.Context())

	var participants []models.User
	if err := db.Where("id IN ?", ids).Find(&participants).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Error creating chat"))
		return
	}
	if len(participants) != len(ids) {
		badRequest(c, "One or more participants not found")
		return
	}

	chat := models.Chat{Name: name, Participants: participants}
	err := db.Omit("Participants.*").Create(&chat).Error
	if err != nil {
		respondError(c, apperr.Wrap(pkgerrors.Wrap(err, "create chat"), apperr.Internal, "Error creating chat"))
		return
	}

	c.JSON(http.StatusCreated, newChatResponse(chat))
}

// GetChatByID godoc
// @Summary      Get a chat
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  ChatResponse
// @Failure      403  {object}  ErrorResponse "You are not a participant of this chat"
// @Failure      404  {object}  ErrorResponse "Chat not found"
// @Router       /chats/{id} [get]
func GetChatByID(c *gin.Context) {
	chat, ok := loadParticipatingChat(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newChatResponse(chat))
}

// GetChatMessages godoc
// @Summary      List chat messages
// @Description  Lists a chat's messages, oldest first.
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {array}   ChatMessageResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /chats/{id}/messages [get]
func GetChatMessages(c *gin.Context) {
	chat, ok := loadParticipatingChat(c)
	if !ok {
		return
	}

	var messages []models.Message
	err := database.DB.WithContext(c.Request.Context()).
		Preload("User").
		Where("chat_id = ?", chat.ID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Error fetching messages"))
		return
	}

	responses := make([]ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, newChatMessageResponse(message))
	}
	c.JSON(http.StatusOK, responses)
}

// SendMessage godoc
// @Summary      Send a message
// @Description  Posts a message to a chat and pushes it to the chat's open streams.
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Chat ID"
// @Param        input body      SendMessageInput  true  "Message"
// @Success      201   {object}  ChatMessageResponse
// @Failure      400   {object}  ErrorResponse "Message text is required"
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /chats/{id}/messages [post]
func SendMessage(c *gin.Context) {
	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Text) == "" {
		badRequest(c, "Message text is required")
		return
	}

	chat, ok := loadParticipatingChat(c)
	if !ok {
		return
	}

	var author models.User
	for _, p := range chat.Participants {
		if p.ID == auth.CurrentUserID(c) {
			author = p
		}
	}

	message := models.Message{ChatID: chat.ID, UserID: author.ID, Text: input.Text}
	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Chat", "User").Create(&message).Error; err != nil {
			return pkgerrors.Wrap(err, "create message")
		}
		err := tx.Model(&models.Chat{}).
			Where("id = ?", chat.ID).
			Updates(map[string]interface{}{
				"last_message":      message.Text,
				"last_message_time": message.CreatedAt,
			}).Error
		return pkgerrors.Wrap(err, "update chat")
	})
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Error sending message"))
		return
	}

	message.User = author
	response := newChatMessageResponse(message)
	if err := hub.GlobalHub.Broadcast(chat.ID, hub.Event{Type: hub.EventMessage, Payload: response}); err != nil {
		logger.Warn("failed to broadcast chat message", zap.String("chat_id", chat.ID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, response)
}

// StreamChat godoc
// @Summary      Stream chat events
// @Description  Server-sent events carrying every message posted to the chat while the stream is open.
// @Tags         chats
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id   path  string  true  "Chat ID"
// @Success      200  {string}  string  "event stream"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /chats/{id}/stream [get]
func StreamChat(c *gin.Context) {
	chat, ok := loadParticipatingChat(c)
	if !ok {
		return
	}

	client := make(hub.Client, streamBufferSize)
	hub.GlobalHub.Subscribe(chat.ID, client)
	defer hub.GlobalHub.Unsubscribe(chat.ID, client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case data, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent(hub.EventMessage, string(data))
			return true
		}
	})
}
