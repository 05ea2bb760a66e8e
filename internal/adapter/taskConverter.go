package adapter

import (
	"fmt"
	"time"

	"github.com/svenkata/TabChatAPI/internal/api"
	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
	"github.com/svenkata/TabChatAPI/internal/domain/tabModel"
	"github.com/svenkata/TabChatAPI/internal/domain/taskModel"
)

func ToInitTaskResponse(task taskModel.Task, messageId string) api.InitTaskResponse {
	return api.InitTaskResponse{
		TaskId:    task.Id,
		TabId:     task.Payload.TabId,
		ChatId:    task.Payload.ChatId,
		MessageId: messageId,
		StatusURL: fmt.Sprintf("status/%s", task.Id),
	}
}

func ToTaskResponse(task taskModel.Task) api.TaskResponse {
	var errorPtr *api.TaskOutgoingError
	if task.Error.Message != "" || task.Error.Code != 0 {
		errorPtr = &api.TaskOutgoingError{
			Code:    task.Error.Code,
			Message: task.Error.Message,
			Retry:   task.Error.Retry,
		}
	}

	return api.TaskResponse{
		Id:        task.Id,
		Type:      string(task.Type),
		Status:    string(task.Status),
		StartTime: task.CreatedTime,
		EndTime:   task.EndTime,
		Error:     errorPtr,
	}
}

func ToTabResponse(tab tabModel.Tab) api.TabResponse {
	return api.TabResponse{
		Id:             tab.Id,
		URL:            tab.URL,
		Name:           tab.Name,
		Status:         string(tab.Status),
		Error:          tab.Error,
		FavIconURL:     tab.FavIconURL,
		LastIngestedAt: tab.LastIngestedAt,
	}
}

func ToChatResponse(chat chatModel.Chat) api.ChatResponse {
	return api.ChatResponse{
		Id:           chat.Id,
		Title:        chat.Title,
		Description:  chat.Description,
		MessageCount: chat.MessageCount,
	}
}

func ToMessageResponse(message chatModel.Message) api.MessageResponse {
	return api.MessageResponse{
		Id:        message.Id,
		ChatId:    message.ChatId,
		Role:      string(message.Role),
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
}

func BadRequest(id string, errMessage string, code int) api.TaskResponse {
	return api.TaskResponse{
		Id:        id,
		Status:    string(api.TaskStatusError),
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Error: &api.TaskOutgoingError{
			Code:    code,
			Message: errMessage,
			Retry:   false,
		},
	}
}
