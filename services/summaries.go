package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"adminchat/db"
	"adminchat/models"

	"gorm.io/gorm"
)

// ConversationSummary - производное, нигде не хранимое представление
// состояния переписки одного пользователя с админом
type ConversationSummary struct {
	UserID          int64      `json:"user_id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	LastMessageTime *time.Time `json:"last_message_time"`
	UnreadCount     int64      `json:"unread_count"`
}

// SummaryService строит список пользователей для админской панели:
// последняя активность и число непрочитанных по каждой переписке.
// Проекция пересчитывается по запросу, отдельной структуры не хранится.
type SummaryService struct {
	directory *DirectoryService
	counters  *CounterCache
}

func NewSummaryService(directory *DirectoryService, counters *CounterCache) *SummaryService {
	return &SummaryService{directory: directory, counters: counters}
}

// ListSummaries возвращает сводку по каждому не-админу, отсортированную в два
// яруса: сначала пользователи с сообщениями (по убыванию последней
// активности), затем без сообщений (по имени). Равные времена разрешаются
// детерминированно: имя, затем id.
func (ss *SummaryService) ListSummaries(ctx context.Context, adminID int64) ([]ConversationSummary, error) {
	users, err := ss.directory.ListNonAdminUsers(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(users))
	for _, user := range users {
		summary := ConversationSummary{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
		}

		lastTime, err := ss.lastMessageTime(ctx, adminID, user.ID)
		if err != nil {
			return nil, err
		}
		summary.LastMessageTime = lastTime

		if cached, ok := ss.counters.GetUnread(ctx, user.ID); ok {
			summary.UnreadCount = cached
		} else {
			count, err := ss.unreadCount(ctx, adminID, user.ID)
			if err != nil {
				return nil, err
			}
			summary.UnreadCount = count
			ss.counters.SetUnread(ctx, user.ID, count)
		}

		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		switch {
		case a.LastMessageTime != nil && b.LastMessageTime != nil:
			if !a.LastMessageTime.Equal(*b.LastMessageTime) {
				return a.LastMessageTime.After(*b.LastMessageTime)
			}
		case a.LastMessageTime != nil:
			return true
		case b.LastMessageTime != nil:
			return false
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.UserID < b.UserID
	})

	return summaries, nil
}

// lastMessageTime возвращает время последнего сообщения пары (в любом
// направлении), nil если переписки еще нет
func (ss *SummaryService) lastMessageTime(ctx context.Context, adminID, userID int64) (*time.Time, error) {
	var last models.Message
	err := db.GetReadOnlyDB(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, adminID, adminID, userID).
		Order("created_at DESC, id DESC").
		Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last message time: %w", ErrStore)
	}
	t := last.CreatedAt
	return &t, nil
}

// unreadCount возвращает число непрочитанных сообщений от пользователя к
// админу. Сообщения от админа к пользователю в счетчик не входят.
func (ss *SummaryService) unreadCount(ctx context.Context, adminID, userID int64) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", adminID, userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", ErrStore)
	}
	return count, nil
}
