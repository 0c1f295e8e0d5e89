package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer отправляет одно письмо. Реализация подставляется при сборке сервера.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer отправляет HTML-письма через обычный SMTP без аутентификации
// (релей внутри периметра)
type SMTPMailer struct {
	Host string
	Port int
	From string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(addr, nil, m.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer пишет письма в лог; используется, когда SMTP не сконфигурирован
type LogMailer struct{}

func (m *LogMailer) Send(to, subject, body string) error {
	log.Printf("mail to %s: %s (%d bytes)", to, subject, len(body))
	return nil
}
