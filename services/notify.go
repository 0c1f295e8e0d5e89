package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Notifier - периодический batch-процесс: раз в интервал собирает
// пользователей с непрочитанными сообщениями к админу и отправляет одно
// сводное письмо со всеми сразу. Флаги is_read не трогает - их меняет
// только просмотр переписки админом.
type Notifier struct {
	messages   *MessageService
	directory  *DirectoryService
	mailer     Mailer
	adminEmail string
	interval   time.Duration
}

func NewNotifier(messages *MessageService, directory *DirectoryService, mailer Mailer, adminEmail string, interval time.Duration) *Notifier {
	return &Notifier{
		messages:   messages,
		directory:  directory,
		mailer:     mailer,
		adminEmail: adminEmail,
		interval:   interval,
	}
}

// Run крутит цикл уведомлений до отмены контекста
func (n *Notifier) Run(ctx context.Context) {
	log.Printf("Notification worker started, interval %s", n.interval)
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification worker stopping")
			return
		case <-ticker.C:
			if err := n.RunOnce(ctx); err != nil {
				log.Printf("Notification run failed: %v", err)
			}
		}
	}
}

// RunOnce выполняет один проход: если непрочитанных нет - ничего не делает,
// иначе отправляет ровно одно сводное уведомление
func (n *Notifier) RunOnce(ctx context.Context) error {
	if n.adminEmail == "" {
		return nil
	}

	adminID, err := n.directory.AdminID(ctx)
	if err != nil {
		return err
	}
	senderIDs, err := n.messages.UnreadSenders(ctx, adminID)
	if err != nil {
		return err
	}
	if len(senderIDs) == 0 {
		return nil
	}

	users := make([]string, 0, len(senderIDs))
	emails := make([]string, 0, len(senderIDs))
	for _, id := range senderIDs {
		user, err := n.directory.GetUser(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return err
		}
		users = append(users, user.Name)
		emails = append(emails, user.Email)
	}
	if len(users) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Users with Unread Messages (%d)", len(users))
	body := n.buildBody(users, emails)

	event := NotificationEvent{To: n.adminEmail, Subject: subject, Body: body}
	if RabbitMQEnabled() {
		return PublishNotification(ctx, event)
	}
	return n.mailer.Send(event.To, event.Subject, event.Body)
}

func (n *Notifier) buildBody(names, emails []string) string {
	var b strings.Builder
	b.WriteString("<h2>Users with Unread Messages</h2>\n")
	fmt.Fprintf(&b, "<div>Total users: %d</div>\n<ul>\n", len(names))
	for i := range names {
		fmt.Fprintf(&b, "<li><strong>%s</strong><div>%s</div></li>\n", htmlEscape(names[i]), htmlEscape(emails[i]))
	}
	b.WriteString("</ul>\n")
	fmt.Fprintf(&b, "<div>Notification interval: %d minutes</div>\n", int(n.interval.Minutes()))
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
