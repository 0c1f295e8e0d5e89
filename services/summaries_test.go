package services

import (
	"context"
	"testing"
	"time"

	"adminchat/db"
	"adminchat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertMessageAt(t *testing.T, senderID, receiverID int64, body string, createdAt time.Time) {
	t.Helper()
	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.ORM.Create(&msg).Error)
}

func TestListSummariesOrdering(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	directory := NewDirectoryService()
	ss := NewSummaryService(directory, nil)

	adminID := createTestAdmin(t)
	u1 := createTestUser(t, "Boris", "boris@example.com", models.RoleUser)
	u2 := createTestUser(t, "Marta", "marta@example.com", models.RoleUser)
	u3 := createTestUser(t, "Aaron", "aaron@example.com", models.RoleUser)
	u4 := createTestUser(t, "Zoe", "zoe@example.com", models.RoleUser)

	now := time.Now()
	// u1 писал два дня назад, u2 - час назад, u3 и u4 молчали
	insertMessageAt(t, u1, adminID, "old message", now.Add(-48*time.Hour))
	insertMessageAt(t, u2, adminID, "recent message", now.Add(-time.Hour))

	summaries, err := ss.ListSummaries(ctx, adminID)
	require.NoError(t, err)
	require.Len(t, summaries, 4)

	// Сначала ярус с сообщениями по свежести, затем молчавшие по алфавиту
	assert.Equal(t, u2, summaries[0].UserID)
	assert.Equal(t, u1, summaries[1].UserID)
	assert.Equal(t, u3, summaries[2].UserID)
	assert.Equal(t, u4, summaries[3].UserID)

	assert.NotNil(t, summaries[0].LastMessageTime)
	assert.Nil(t, summaries[2].LastMessageTime)
	assert.Nil(t, summaries[3].LastMessageTime)
}

func TestListSummariesEqualTimeTieBreak(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	directory := NewDirectoryService()
	ss := NewSummaryService(directory, nil)

	adminID := createTestAdmin(t)
	// Порядок создания обратен алфавитному, чтобы сортировка по id не маскировала тай-брейк
	zoe := createTestUser(t, "Zoe", "zoe@example.com", models.RoleUser)
	firstCasey := createTestUser(t, "Casey", "casey1@example.com", models.RoleUser)
	secondCasey := createTestUser(t, "Casey", "casey2@example.com", models.RoleUser)
	aaron := createTestUser(t, "Aaron", "aaron@example.com", models.RoleUser)

	sameTime := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	insertMessageAt(t, zoe, adminID, "zoe message", sameTime)
	insertMessageAt(t, firstCasey, adminID, "casey one", sameTime)
	insertMessageAt(t, secondCasey, adminID, "casey two", sameTime)
	insertMessageAt(t, aaron, adminID, "aaron message", sameTime)

	summaries, err := ss.ListSummaries(ctx, adminID)
	require.NoError(t, err)
	require.Len(t, summaries, 4)

	// Равное время последней активности: имя, при равных именах - id
	assert.Equal(t, aaron, summaries[0].UserID)
	assert.Equal(t, firstCasey, summaries[1].UserID)
	assert.Equal(t, secondCasey, summaries[2].UserID)
	assert.Equal(t, zoe, summaries[3].UserID)
}

func TestListSummariesUnreadCounts(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	directory := NewDirectoryService()
	ms := NewMessageService(nil)
	ss := NewSummaryService(directory, nil)

	adminID := createTestAdmin(t)
	userID := createTestUser(t, "Marta", "marta@example.com", models.RoleUser)

	_, err := ms.Send(ctx, userID, adminID, "unread one")
	require.NoError(t, err)
	_, err = ms.Send(ctx, userID, adminID, "unread two")
	require.NoError(t, err)
	// Исходящие от админа в счетчик не входят
	_, err = ms.Send(ctx, adminID, userID, "outgoing")
	require.NoError(t, err)

	summaries, err := ss.ListSummaries(ctx, adminID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].UnreadCount)

	_, err = ms.MarkRead(ctx, adminID, userID)
	require.NoError(t, err)

	summaries, err = ss.ListSummaries(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summaries[0].UnreadCount)
	// Последняя активность учитывает оба направления
	assert.NotNil(t, summaries[0].LastMessageTime)
}

func TestListSummariesIncludesSilentUsersOnly(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	directory := NewDirectoryService()
	ss := NewSummaryService(directory, nil)

	adminID := createTestAdmin(t)
	createTestUser(t, "Quiet", "quiet@example.com", models.RoleUser)
	// Второй админ в список не попадает
	createTestUser(t, "Other Admin", "admin2@example.com", models.RoleAdmin)

	summaries, err := ss.ListSummaries(ctx, adminID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Quiet", summaries[0].Name)
	assert.Equal(t, int64(0), summaries[0].UnreadCount)
	assert.Nil(t, summaries[0].LastMessageTime)
}

func TestDirectoryAdminResolution(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	directory := NewDirectoryService()

	// Без админа в справочнике - ErrNotFound
	_, err := directory.AdminID(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	first := createTestAdmin(t)
	createTestUser(t, "Second Admin", "admin2@example.com", models.RoleAdmin)

	adminID, err := directory.AdminID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, adminID)

	_, err = directory.GetUser(ctx, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}
