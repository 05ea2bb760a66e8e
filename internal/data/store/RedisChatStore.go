package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/svenkata/TabChatAPI/internal/config"
	"github.com/svenkata/TabChatAPI/internal/data/redisStore"
	"github.com/svenkata/TabChatAPI/internal/domain/chatModel"
	"github.com/svenkata/TabChatAPI/pkg/logx"
)

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
)

// RedisChatStore keeps chats under chat:{id}, a per-user id set under
// chats:{userId}, message bodies under message:{id} and the per-chat
// ordering under chat:{id}:messages. The denormalized message count lives
// in its own counter key so appends and truncations can keep it in the
// same MULTI/EXEC block as the list edits.
type RedisChatStore struct {
	store  *redisStore.Store
	logger *logx.Logger
}

func GetRedisChatStore(ctx context.Context) *RedisChatStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisChatStore)
	if backing == nil {
		return nil
	}
	return &RedisChatStore{
		store:  backing,
		logger: logx.NewLogger("ChatStore"),
	}
}

func chatKey(chatId string) string {
	return "chat:" + chatId
}

func chatsOfUserKey(userId string) string {
	return "chats:" + userId
}

func messagesOfChatKey(chatId string) string {
	return "chat:" + chatId + ":messages"
}

func messageCountKey(chatId string) string {
	return "chat:" + chatId + ":msgcount"
}

func messageKey(messageId string) string {
	return "message:" + messageId
}

func (s *RedisChatStore) CreateChat(ctx context.Context, chat chatModel.Chat) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chat.Id)
	data, err := json.Marshal(chat)
	if err != nil {
		return err
	}

	if err = s.store.Set(ctx, chatKey(chat.Id), data, 0); err != nil {
		return err
	}
	if err = s.store.SetAdd(ctx, chatsOfUserKey(chat.UserId), chat.Id); err != nil {
		return err
	}
	log.Debug("Created chat in Redis")
	return nil
}

func (s *RedisChatStore) GetChat(ctx context.Context, chatId string) (chatModel.Chat, bool) {
	var chat chatModel.Chat
	val, err := s.store.Get(ctx, chatKey(chatId))
	if s.store.IsNil(err) {
		return chat, false
	} else if err != nil {
		s.logger.Error("Error reading chat from Redis", "chatId", chatId, "error", err)
		return chat, false
	}

	if err = json.Unmarshal([]byte(val), &chat); err != nil {
		s.logger.Error("Error unmarshalling chat", "chatId", chatId, "error", err)
		return chat, false
	}

	// the counter key is authoritative, the JSON copy is stale by design
	count, err := s.store.GetInt(ctx, messageCountKey(chatId))
	if err == nil {
		chat.MessageCount = int(count)
	} else if !s.store.IsNil(err) {
		s.logger.Error("Error reading message count", "chatId", chatId, "error", err)
	}
	return chat, true
}

func (s *RedisChatStore) ListChats(ctx context.Context, userId string) ([]chatModel.Chat, error) {
	ids, err := s.store.SetMembers(ctx, chatsOfUserKey(userId))
	if err != nil {
		return nil, err
	}

	chats := make([]chatModel.Chat, 0, len(ids))
	for _, id := range ids {
		if chat, found := s.GetChat(ctx, id); found {
			chats = append(chats, chat)
		}
	}
	return chats, nil
}

func (s *RedisChatStore) DeleteChat(ctx context.Context, chatId string) error {
	chat, found := s.GetChat(ctx, chatId)
	if !found {
		return ErrChatNotFound
	}

	messageIds, err := s.store.ListRange(ctx, messagesOfChatKey(chatId))
	if err != nil {
		return err
	}

	keys := []string{chatKey(chatId), messagesOfChatKey(chatId), messageCountKey(chatId)}
	for _, id := range messageIds {
		keys = append(keys, messageKey(id))
	}
	if err = s.store.DeleteAllTx(ctx, keys...); err != nil {
		return err
	}
	return s.store.SetRemove(ctx, chatsOfUserKey(chat.UserId), chatId)
}

func (s *RedisChatStore) AppendMessage(ctx context.Context, chatId string, role chatModel.Role, content string) (chatModel.Message, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId)
	if _, found := s.GetChat(ctx, chatId); !found {
		return chatModel.Message{}, ErrChatNotFound
	}

	message := chatModel.Message{
		Id:        uuid.NewString(),
		ChatId:    chatId,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(message)
	if err != nil {
		return chatModel.Message{}, err
	}

	err = s.store.AppendRecordTx(ctx, messageKey(message.Id), data, messagesOfChatKey(chatId), message.Id, messageCountKey(chatId))
	if err != nil {
		return chatModel.Message{}, err
	}
	log.Debug("Appended message", "messageId", message.Id, "role", role)
	return message, nil
}

func (s *RedisChatStore) GetMessage(ctx context.Context, messageId string) (chatModel.Message, bool) {
	var message chatModel.Message
	val, err := s.store.Get(ctx, messageKey(messageId))
	if s.store.IsNil(err) {
		return message, false
	} else if err != nil {
		s.logger.Error("Error reading message from Redis", "messageId", messageId, "error", err)
		return message, false
	}

	if err = json.Unmarshal([]byte(val), &message); err != nil {
		s.logger.Error("Error unmarshalling message", "messageId", messageId, "error", err)
		return message, false
	}
	return message, true
}

func (s *RedisChatStore) PatchMessage(ctx context.Context, messageId string, content string) error {
	message, found := s.GetMessage(ctx, messageId)
	if !found {
		return ErrMessageNotFound
	}

	message.Content = content
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, messageKey(messageId), data, 0)
}

func (s *RedisChatStore) History(ctx context.Context, chatId string) ([]chatModel.Message, error) {
	ids, err := s.store.ListRange(ctx, messagesOfChatKey(chatId))
	if err != nil {
		return nil, err
	}

	messages := make([]chatModel.Message, 0, len(ids))
	for _, id := range ids {
		if message, found := s.GetMessage(ctx, id); found {
			messages = append(messages, message)
		}
	}
	return messages, nil
}

func (s *RedisChatStore) TruncateFrom(ctx context.Context, messageId string) error {
	message, found := s.GetMessage(ctx, messageId)
	if !found {
		return ErrMessageNotFound
	}

	ids, err := s.store.ListRange(ctx, messagesOfChatKey(message.ChatId))
	if err != nil {
		return err
	}

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

	dropped := ids[cut:]
	recordKeys := make([]string, 0, len(dropped))
	for _, id := range dropped {
		recordKeys = append(recordKeys, messageKey(id))
	}

	err = s.store.TruncateRecordsTx(ctx, messagesOfChatKey(message.ChatId), int64(cut), recordKeys, messageCountKey(message.ChatId), int64(len(dropped)))
	if err != nil {
		return err
	}
	s.logger.Debug("Truncated chat", "chatId", message.ChatId, "fromMessageId", messageId, "removed", len(dropped))
	return nil
}

func TestChatStore(store *redisStore.Store) *RedisChatStore {
	return &RedisChatStore{
		store:  store,
		logger: logx.NewLogger("test chat store"),
	}
}
