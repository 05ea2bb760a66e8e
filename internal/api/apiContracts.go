package api

import "time"

type TaskExternalStatus string

const (
	TaskStatusError TaskExternalStatus = "Error"
)

type TaskResponse struct {
	Id        string             `json:"id" example:"task_cz109"`
	Type      string             `json:"type" example:"Ingest"`
	Status    string             `json:"status" example:"RUNNING"`
	Error     *TaskOutgoingError `json:"error,omitempty"`
	StartTime time.Time          `json:"start_time"`
	EndTime   time.Time          `json:"end_time,omitempty"`
}

type TaskOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Task not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type InitTaskResponse struct {
	TaskId    string `json:"task_id"`
	TabId     string `json:"tab_id,omitempty"`
	ChatId    string `json:"chat_id,omitempty"`
	MessageId string `json:"message_id,omitempty"`
	StatusURL string `json:"status_url"`
}

type TabResponse struct {
	Id             string    `json:"id"`
	URL            string    `json:"url"`
	Name           string    `json:"name,omitempty"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	FavIconURL     string    `json:"fav_icon_url,omitempty"`
	LastIngestedAt time.Time `json:"last_ingested_at,omitempty"`
}

type ChatResponse struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	MessageCount int    `json:"message_count"`
}

type MessageResponse struct {
	Id        string    `json:"id"`
	ChatId    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// requests---------------------

type SaveTabRequest struct {
	URL        string `json:"url" validate:"required"`
	Name       string `json:"name,omitempty"`
	Content    string `json:"content" validate:"required"`
	FavIconURL string `json:"fav_icon_url,omitempty"`
}

type CreateChatRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type CreateMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type EditMessageRequest struct {
	Content string `json:"content" validate:"required"`
}
