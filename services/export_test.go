package services

import (
	"strings"
	"testing"
	"time"

	"adminchat/models"

	"github.com/stretchr/testify/assert"
)

func TestExportTranscript(t *testing.T) {
	user := &models.User{ID: 2, Name: "Marta Kowalska", Email: "marta@example.com"}
	adminID := int64(1)

	day1 := time.Date(2025, time.March, 3, 9, 15, 0, 0, time.Local)
	day2 := time.Date(2025, time.March, 4, 18, 40, 0, 0, time.Local)
	messages := []models.Message{
		{ID: 1, SenderID: 2, ReceiverID: 1, Body: "Hello, I need help", CreatedAt: day1},
		{ID: 2, SenderID: 1, ReceiverID: 2, Body: "Sure, what is the problem?", CreatedAt: day1.Add(5 * time.Minute)},
		{ID: 3, SenderID: 2, ReceiverID: 1, Body: "Fixed now, thanks", CreatedAt: day2},
	}

	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.Local)
	transcript := ExportTranscript(user, adminID, messages, now)

	assert.True(t, strings.HasPrefix(transcript, "Chat History with Marta Kowalska (marta@example.com)\n"))
	assert.Contains(t, transcript, "Exported on: March 5, 2025 at 12:00 pm")

	// Заголовки групп по датам
	assert.Contains(t, transcript, "\n[Mar 3, 2025]\n")
	assert.Contains(t, transcript, "\n[Mar 4, 2025]\n")
	assert.Equal(t, 1, strings.Count(transcript, "[Mar 3, 2025]"))

	// Строки сообщений: [время] отправитель: текст
	assert.Contains(t, transcript, "[Mar 3, 9:15 am] Marta Kowalska: Hello, I need help")
	assert.Contains(t, transcript, "[Mar 3, 9:20 am] Admin: Sure, what is the problem?")
	assert.Contains(t, transcript, "[Mar 4, 6:40 pm] Marta Kowalska: Fixed now, thanks")
}

func TestExportTranscriptWrapsLongLines(t *testing.T) {
	user := &models.User{ID: 2, Name: "Bob", Email: "bob@example.com"}
	body := strings.Repeat("word ", 40)
	messages := []models.Message{
		{ID: 1, SenderID: 2, ReceiverID: 1, Body: body, CreatedAt: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local)},
	}

	transcript := ExportTranscript(user, 1, messages, time.Now())

	for _, line := range strings.Split(transcript, "\n") {
		assert.LessOrEqual(t, len(line), 84, "line too long: %q", line)
	}
	// Продолжения переносятся с отступом
	assert.Contains(t, transcript, "\n    word")
}

func TestExportTranscriptFlattensNewlines(t *testing.T) {
	user := &models.User{ID: 2, Name: "Bob", Email: "bob@example.com"}
	messages := []models.Message{
		{ID: 1, SenderID: 2, ReceiverID: 1, Body: "line one\nline two", CreatedAt: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local)},
	}

	transcript := ExportTranscript(user, 1, messages, time.Now())
	assert.Contains(t, transcript, "Bob: line one line two")
}

func TestExportFilename(t *testing.T) {
	user := &models.User{Name: "Marta Kowalska"}
	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "chat-export-marta-kowalska-2025-03-05.txt", ExportFilename(user, now))
}
