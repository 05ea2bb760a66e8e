package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/svenkata/TabChatAPI/internal/adapter"
	"github.com/svenkata/TabChatAPI/internal/adapter/utils"
	"github.com/svenkata/TabChatAPI/internal/api"
	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
)

// CreateChatHandler godoc
// @Summary      Create a chat
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        request  body      api.CreateChatRequest  true  "Optional title and description"
// @Success      201      {object}  api.ChatResponse
// @Router       /chats [post]
func CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	var requestData api.CreateChatRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("Couldn't close the Create Chat reader :", err)
		}
	}(r.Body)
	// an empty body is fine, both fields are optional
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil && err != io.EOF {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	title := requestData.Title
	if title == "" {
		title = "New Chat"
	}

	chat := chatModel.Chat{
		Id:          utils.GetNewUUID(),
		UserId:      userFromRequest(r),
		Title:       title,
		Description: requestData.Description,
	}
	if err := handlerInstance.chats.CreateChat(r.Context(), chat); err != nil {
		logRH.Error("Error creating chat", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Internal Server Error")
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToChatResponse(chat))
}

// ListChatsHandler godoc
// @Summary      List chats
// @Tags         Chats
// @Produce      json
// @Success      200  {array}  api.ChatResponse
// @Router       /chats [get]
func ListChatsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	chats, err := handlerInstance.chats.ListChats(r.Context(), userFromRequest(r))
	if err != nil {
		logRH.Error("Error listing chats", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Internal Server Error")
		return
	}

	response := make([]api.ChatResponse, 0, len(chats))
	for _, chat := range chats {
		response = append(response, adapter.ToChatResponse(chat))
	}
	writeJsonResponse(w, http.StatusOK, response)
}

// DeleteChatHandler godoc
// @Summary      Delete a chat and its messages
// @Tags         Chats
// @Produce      json
// @Param        id   path  string  true  "Chat ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  api.TaskResponse  "Chat not found"
// @Router       /chats/{id} [delete]
func DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	chatId := utils.GetChiURLParam(r, "id")
	if _, found := ownedChat(r, chatId); !found {
		WriteErrorResponse(w, http.StatusNotFound, chatId, "Chat not found")
		return
	}

	if err := handlerInstance.chats.DeleteChat(r.Context(), chatId); err != nil {
		logRH.Error("Error deleting chat", "chatId", chatId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, chatId, "Internal Server Error")
		return
	}
	writeJsonResponse(w, http.StatusOK, map[string]string{"deleted": chatId})
}

// GetMessagesHandler godoc
// @Summary      Get chat history
// @Description  Returns the chat's messages in creation order. A streaming answer shows its partial content.
// @Tags         Messaging
// @Produce      json
// @Param        id   path  string  true  "Chat ID"
// @Success      200  {array}   api.MessageResponse
// @Failure      404  {object}  api.TaskResponse  "Chat not found"
// @Router       /chats/{id}/messages [get]
func GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	chatId := utils.GetChiURLParam(r, "id")
	if _, found := ownedChat(r, chatId); !found {
		WriteErrorResponse(w, http.StatusNotFound, chatId, "Chat not found")
		return
	}

	history, err := handlerInstance.chats.History(r.Context(), chatId)
	if err != nil {
		logRH.Error("Error loading history", "chatId", chatId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, chatId, "Internal Server Error")
		return
	}

	response := make([]api.MessageResponse, 0, len(history))
	for _, message := range history {
		response = append(response, adapter.ToMessageResponse(message))
	}
	writeJsonResponse(w, http.StatusOK, response)
}

// CreateMessageHandler godoc
// @Summary      Send a message and queue a completion
// @Description  Appends the user message plus an assistant placeholder, then queues the streaming completion that fills the placeholder.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Chat ID"
// @Param        request  body      api.CreateMessageRequest  true  "Message content"
// @Success      202      {object}  api.InitTaskResponse      "Completion queued"
// @Failure      400      {object}  api.TaskResponse          "Missing content"
// @Failure      404      {object}  api.TaskResponse          "Chat not found"
// @Router       /chats/{id}/messages [post]
func CreateMessageHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	chatId := utils.GetChiURLParam(r, "id")
	if _, found := ownedChat(r, chatId); !found {
		WriteErrorResponse(w, http.StatusNotFound, chatId, "Chat not found")
		return
	}

	var requestData api.CreateMessageRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("Couldn't close the Create Message reader :", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Content == "" {
		WriteErrorResponse(w, http.StatusBadRequest, chatId, "content is required")
		return
	}

	appendAndQueue(w, r, chatId, requestData.Content)
}

// EditMessageHandler godoc
// @Summary      Edit a user message and regenerate
// @Description  Replaces a user message: the message and everything after it are removed, the new content is appended and a fresh completion is queued.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Message ID"
// @Param        request  body      api.EditMessageRequest  true  "New content"
// @Success      202      {object}  api.InitTaskResponse    "Completion queued"
// @Failure      400      {object}  api.TaskResponse        "Missing content or not a user message"
// @Failure      404      {object}  api.TaskResponse        "Message not found"
// @Router       /messages/{id} [patch]
func EditMessageHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	messageId := utils.GetChiURLParam(r, "id")
	message, found := handlerInstance.chats.GetMessage(r.Context(), messageId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, messageId, "Message not found")
		return
	}
	if _, found = ownedChat(r, message.ChatId); !found {
		WriteErrorResponse(w, http.StatusNotFound, messageId, "Message not found")
		return
	}
	if message.Role != chatModel.RoleUser {
		WriteErrorResponse(w, http.StatusBadRequest, messageId, "only user messages can be edited")
		return
	}

	var requestData api.EditMessageRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("Couldn't close the Edit Message reader :", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Content == "" {
		WriteErrorResponse(w, http.StatusBadRequest, messageId, "content is required")
		return
	}

	// the edited message and everything after it are regenerated
	if err := handlerInstance.chats.TruncateFrom(r.Context(), messageId); err != nil {
		logRH.Error("Error truncating chat", "messageId", messageId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, messageId, "Internal Server Error")
		return
	}

	appendAndQueue(w, r, message.ChatId, requestData.Content)
}

func ownedChat(r *http.Request, chatId string) (chatModel.Chat, bool) {
	chat, found := handlerInstance.chats.GetChat(r.Context(), chatId)
	if !found || chat.UserId != userFromRequest(r) {
		return chatModel.Chat{}, false
	}
	return chat, true
}

func appendAndQueue(w http.ResponseWriter, r *http.Request, chatId string, content string) {
	ctx := r.Context()

	if _, err := handlerInstance.chats.AppendMessage(ctx, chatId, chatModel.RoleUser, content); err != nil {
		logRH.Error("Error appending user message", "chatId", chatId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, chatId, "Internal Server Error")
		return
	}

	placeholder, err := handlerInstance.chats.AppendMessage(ctx, chatId, chatModel.RoleAssistant, config.PendingMessageContent)
	if err != nil {
		logRH.Error("Error appending placeholder", "chatId", chatId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, chatId, "Internal Server Error")
		return
	}

	newTask := QueueCompletionTask(chatId, placeholder.Id, traceFromRequest(r))
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitTaskResponse(newTask, placeholder.Id))
}
