package services

import (
	"fmt"
	"strings"
	"time"

	"adminchat/models"
)

const exportWrapWidth = 80

// ExportTranscript строит текстовую выгрузку переписки: заголовок с
// идентичностью пользователя, затем строки `[время] отправитель: текст`,
// сгруппированные по датам. Сообщения должны быть уже отсортированы по
// возрастанию (created_at, id).
func ExportTranscript(user *models.User, adminID int64, messages []models.Message, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Chat History with %s (%s)\n", user.Name, user.Email)
	fmt.Fprintf(&b, "Exported on: %s\n\n", now.Format("January 2, 2006 at 3:04 pm"))

	lastDate := ""
	for _, msg := range messages {
		local := msg.CreatedAt.Local()
		date := local.Format("Jan 2, 2006")
		if date != lastDate {
			fmt.Fprintf(&b, "\n[%s]\n", date)
			lastDate = date
		}

		sender := user.Name
		if msg.SenderID == adminID {
			sender = "Admin"
		}
		body := strings.Join(strings.Fields(msg.Body), " ")
		line := fmt.Sprintf("[%s] %s: %s", local.Format("Jan 2, 3:04 pm"), sender, body)
		b.WriteString(wrapLine(line, exportWrapWidth, "\n    "))
		b.WriteString("\n")
	}

	return b.String()
}

// ExportFilename возвращает имя файла выгрузки вида chat-export-<name>-<date>.txt
func ExportFilename(user *models.User, now time.Time) string {
	return fmt.Sprintf("chat-export-%s-%s.txt", slugify(user.Name), now.Format("2006-01-02"))
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// wrapLine переносит строку по словам, чтобы каждая строка не превышала
// width символов; продолжения получают префикс break
func wrapLine(line string, width int, brk string) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i == 0 {
			b.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) > width {
			b.WriteString(brk)
			b.WriteString(word)
			lineLen = len(word)
			continue
		}
		b.WriteString(" ")
		b.WriteString(word)
		lineLen += 1 + len(word)
	}
	return b.String()
}
