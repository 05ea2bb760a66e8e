package chatModel

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Chat aggregates messages. MessageCount is denormalized and must always
// equal the live message count; stores update it in the same transaction
// as message inserts and deletes.
type Chat struct {
	Id           string `json:"id"`
	UserId       string `json:"user_id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	MessageCount int    `json:"message_count"`
}

// Message belongs to one chat. Creation order defines chat history.
// An assistant message holding config.PendingMessageContent is a
// placeholder that the completion loop overwrites while streaming.
type Message struct {
	Id        string    `json:"id"`
	ChatId    string    `json:"chat_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store covers chats and their messages in one interface so implementations
// can keep MessageCount transactional with message writes.
type Store interface {
	CreateChat(ctx context.Context, chat Chat) error
	GetChat(ctx context.Context, chatId string) (Chat, bool)
	ListChats(ctx context.Context, userId string) ([]Chat, error)
	DeleteChat(ctx context.Context, chatId string) error

	// AppendMessage inserts at the end of the chat and bumps MessageCount.
	AppendMessage(ctx context.Context, chatId string, role Role, content string) (Message, error)
	// PatchMessage replaces a message's content in place. Used by the
	// completion loop to grow the streaming placeholder.
	PatchMessage(ctx context.Context, messageId string, content string) error
	GetMessage(ctx context.Context, messageId string) (Message, bool)
	History(ctx context.Context, chatId string) ([]Message, error)
	// TruncateFrom deletes the given message and every later message in its
	// chat, fixing MessageCount in the same transaction.
	TruncateFrom(ctx context.Context, messageId string) error
}
