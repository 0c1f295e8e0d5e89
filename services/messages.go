package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"adminchat/db"
	"adminchat/models"
)

// MaxMessageLength - максимальная длина сообщения в символах (после trim)
const MaxMessageLength = 500

// MessageService - хранилище сообщений: единственная append-only таблица,
// общая для всех переписок. Мутации строки после вставки запрещены, кроме
// перехода is_read false->true.
type MessageService struct {
	counters *CounterCache // nil, если Redis не сконфигурирован
}

func NewMessageService(counters *CounterCache) *MessageService {
	return &MessageService{counters: counters}
}

// Send валидирует и вставляет сообщение. Id назначает хранилище
// (автоинкремент), заранее он не вычисляется.
func (ms *MessageService) Send(ctx context.Context, senderID, receiverID int64, body string) (*models.Message, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, fmt.Errorf("message cannot be empty: %w", ErrValidation)
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLength {
		return nil, fmt.Errorf("message too long (max %d characters): %w", MaxMessageLength, ErrValidation)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("sender and receiver must differ: %w", ErrValidation)
	}

	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       trimmed,
		IsRead:     false,
		CreatedAt:  time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", ErrStore)
	}

	// Счетчик непрочитанных отправителя мог измениться
	ms.counters.InvalidateUnread(ctx, senderID)
	return &msg, nil
}

// Conversation возвращает всю переписку между двумя участниками (оба
// направления), по возрастанию (created_at, id). Вся история целиком -
// известный потолок масштабирования, см. ConversationSince для поллинга.
func (ms *MessageService) Conversation(ctx context.Context, participantA, participantB int64) ([]models.Message, error) {
	return ms.ConversationSince(ctx, participantA, participantB, 0)
}

// ConversationSince возвращает сообщения переписки с id > afterID.
// afterID=0 эквивалентен полной выборке.
func (ms *MessageService) ConversationSince(ctx context.Context, participantA, participantB, afterID int64) ([]models.Message, error) {
	var messages []models.Message
	err := db.GetReadOnlyDB(ctx).
		Where("id > ?", afterID).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			participantA, participantB, participantB, participantA).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", ErrStore)
	}
	return messages, nil
}

// MarkRead помечает прочитанными все сообщения от senderID к receiverID
// (направленно). Идемпотентна: повторный вызов ничего не меняет.
func (ms *MessageService) MarkRead(ctx context.Context, receiverID, senderID int64) (int64, error) {
	res := db.GetWriteDB(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", ErrStore)
	}
	if res.RowsAffected > 0 {
		ms.counters.InvalidateUnread(ctx, senderID)
	}
	return res.RowsAffected, nil
}

// DeleteConversation атомарно удаляет всю переписку пары (одним statement)
func (ms *MessageService) DeleteConversation(ctx context.Context, participantA, participantB int64) (int64, error) {
	res := db.GetWriteDB(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			participantA, participantB, participantB, participantA).
		Delete(&models.Message{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete conversation: %w", ErrStore)
	}
	ms.counters.InvalidateUnread(ctx, participantA)
	ms.counters.InvalidateUnread(ctx, participantB)
	return res.RowsAffected, nil
}

// UnreadCountFrom возвращает число непрочитанных сообщений от senderID к receiverID
func (ms *MessageService) UnreadCountFrom(ctx context.Context, receiverID, senderID int64) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", ErrStore)
	}
	return count, nil
}

// UnreadSenders возвращает отправителей, у которых есть хотя бы одно
// непрочитанное сообщение, адресованное receiverID. is_read не меняет.
func (ms *MessageService) UnreadSenders(ctx context.Context, receiverID int64) ([]int64, error) {
	var senders []int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Distinct("sender_id").
		Order("sender_id ASC").
		Pluck("sender_id", &senders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query unread senders: %w", ErrStore)
	}
	return senders, nil
}
