package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Suryanshu-Nabheet/Zenith/internal/service"
)

type HistoryHandler interface {
	GetConversations(c *gin.Context)
	GetConversationMessages(c *gin.Context)
	GetUsers(c *gin.Context)
	GetCalls(c *gin.Context)
}

type historyHandler struct {
	service service.HistoryService
}

func NewHistoryHandler(service service.HistoryService) HistoryHandler {
	return &historyHandler{
		service: service,
	}
}

// GetConversations returns the requesting user's conversations, most
// recently active first.
func (h *historyHandler) GetConversations(c *gin.Context) {
	identity := identityFrom(c)

	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := h.service.Conversations(c.Request.Context(), identity.UserID, page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetConversationMessages returns one page of message history for a
// conversation the requester participates in.
func (h *historyHandler) GetConversationMessages(c *gin.Context) {
	identity := identityFrom(c)
	conversationID := c.Param("conversationId")

	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := h.service.Messages(c.Request.Context(), identity.UserID, conversationID, page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *historyHandler) GetUsers(c *gin.Context) {
	users, err := h.service.Users(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

func (h *historyHandler) GetCalls(c *gin.Context) {
	identity := identityFrom(c)

	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := h.service.Calls(c.Request.Context(), identity.UserID, page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func pageParam(c *gin.Context) (int64, bool) {
	page := c.DefaultQuery("page", "1")
	pageNumber, err := strconv.ParseInt(page, 10, 64)
	if err != nil || pageNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid page number",
		})
		return 0, false
	}
	return pageNumber, true
}
