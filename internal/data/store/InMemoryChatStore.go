package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
)

type InMemoryChatStore struct {
	chatMutex *sync.RWMutex
	chatMap   map[string]chatModel.Chat
	// chatId -> ordered message ids
	orderMap   map[string][]string
	messageMap map[string]chatModel.Message
}

func InitInMemoryChatStore() *InMemoryChatStore {
	return &InMemoryChatStore{
		chatMutex:  new(sync.RWMutex),
		chatMap:    make(map[string]chatModel.Chat),
		orderMap:   make(map[string][]string),
		messageMap: make(map[string]chatModel.Message),
	}
}

func (store *InMemoryChatStore) CreateChat(ctx context.Context, chat chatModel.Chat) error {
	store.chatMutex.Lock()
	defer store.chatMutex.Unlock()
	store.chatMap[chat.Id] = chat
	return nil
}

func (store *InMemoryChatStore) GetChat(ctx context.Context, chatId string) (chatModel.Chat, bool) {
	store.chatMutex.RLock()
	defer store.chatMutex.RUnlock()
	result, found := store.chatMap[chatId]
	return result, found
}

func (store *InMemoryChatStore) ListChats(ctx context.Context, userId string) ([]chatModel.Chat, error) {
	store.chatMutex.RLock()
	defer store.chatMutex.RUnlock()
	chats := make([]chatModel.Chat, 0)
	for _, chat := range store.chatMap {
		if chat.UserId == userId {
			chats = append(chats, chat)
		}
	}
	return chats, nil
}

func (store *InMemoryChatStore) DeleteChat(ctx context.Context, chatId string) error {
	store.chatMutex.Lock()
	defer store.chatMutex.Unlock()
	if _, found := store.chatMap[chatId]; !found {
		return ErrChatNotFound
	}
	for _, id := range store.orderMap[chatId] {
		delete(store.messageMap, id)
	}
	delete(store.orderMap, chatId)
	delete(store.chatMap, chatId)
	return nil
}

func (store *InMemoryChatStore) AppendMessage(ctx context.Context, chatId string, role chatModel.Role, content string) (chatModel.Message, error) {
	store.chatMutex.Lock()
	defer store.chatMutex.Unlock()
	chat, found := store.chatMap[chatId]
	if !found {
		return chatModel.Message{}, ErrChatNotFound
	}

	message := chatModel.Message{
		Id:        uuid.NewString(),
		ChatId:    chatId,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	store.messageMap[message.Id] = message
	store.orderMap[chatId] = append(store.orderMap[chatId], message.Id)
	chat.MessageCount++
	store.chatMap[chatId] = chat
	return message, nil
}

func (store *InMemoryChatStore) GetMessage(ctx context.Context, messageId string) (chatModel.Message, bool) {
	store.chatMutex.RLock()
	defer store.chatMutex.RUnlock()
	result, found := store.messageMap[messageId]
	return result, found
}

func (store *InMemoryChatStore) PatchMessage(ctx context.Context, messageId string, content string) error {
	store.chatMutex.Lock()
	defer store.chatMutex.Unlock()
	message, found := store.messageMap[messageId]
	if !found {
		return ErrMessageNotFound
	}
	message.Content = content
	store.messageMap[messageId] = message
	return nil
}

func (store *InMemoryChatStore) History(ctx context.Context, chatId string) ([]chatModel.Message, error) {
	store.chatMutex.RLock()
	defer store.chatMutex.RUnlock()
	messages := make([]chatModel.Message, 0, len(store.orderMap[chatId]))
	for _, id := range store.orderMap[chatId] {
		if message, found := store.messageMap[id]; found {
			messages = append(messages, message)
		}
	}
	return messages, nil
}

func (store *InMemoryChatStore) TruncateFrom(ctx context.Context, messageId string) error {
	store.chatMutex.Lock()
	defer store.chatMutex.Unlock()
	message, found := store.messageMap[messageId]
	if !found {
		return ErrMessageNotFound
	}

	ids := store.orderMap[message.ChatId]
	cut := -1
	for i, id := range ids {
		if id == messageId {
			cut = i
			break
		}
	}
	if cut < 0 {
		return ErrMessageNotFound
	}

	for _, id := range ids[cut:] {
		delete(store.messageMap, id)
	}
	removed := len(ids) - cut
	store.orderMap[message.ChatId] = ids[:cut]

	chat := store.chatMap[message.ChatId]
	chat.MessageCount -= removed
	store.chatMap[message.ChatId] = chat
	return nil
}
