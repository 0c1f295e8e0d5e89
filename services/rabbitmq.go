package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	rabbitConn     *amqp.Connection
	rabbitChannel  *amqp.Channel
	notifyExchange = "chat_notifications"
)

// NotificationEvent - одно сводное уведомление, готовое к доставке почтой
type NotificationEvent struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// InitRabbitMQ инициализирует соединение и exchange для уведомлений
func InitRabbitMQ(url string) error {
	var err error
	rabbitConn, err = amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	rabbitChannel, err = rabbitConn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := rabbitChannel.ExchangeDeclare(
		notifyExchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // args
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	log.Printf("RabbitMQ initialized successfully with URL: %s", url)
	return nil
}

// RabbitMQEnabled сообщает, поднят ли канал уведомлений
func RabbitMQEnabled() bool {
	return rabbitChannel != nil
}

// CloseRabbitMQ закрывает канал и соединение
func CloseRabbitMQ() {
	if rabbitChannel != nil {
		_ = rabbitChannel.Close()
		rabbitChannel = nil
	}
	if rabbitConn != nil {
		_ = rabbitConn.Close()
		rabbitConn = nil
	}
}

// PublishNotification публикует сводное уведомление в exchange
func PublishNotification(ctx context.Context, event NotificationEvent) error {
	if rabbitChannel == nil {
		return fmt.Errorf("RabbitMQ channel not initialized")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return rabbitChannel.PublishWithContext(ctx,
		notifyExchange,
		"notify.admin",
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// StartNotificationConsumer запускает воркер, который читает сводные
// уведомления из очереди и отдает их в Mailer
func StartNotificationConsumer(ctx context.Context, queueName string, mailer Mailer) error {
	if rabbitChannel == nil {
		return fmt.Errorf("RabbitMQ channel not initialized")
	}
	q, err := rabbitChannel.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := rabbitChannel.QueueBind(
		q.Name,
		"notify.admin",
		notifyExchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	msgs, err := rabbitChannel.Consume(
		q.Name,
		"",
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				var event NotificationEvent
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					log.Println("Failed to unmarshal notification event:", err)
					continue
				}
				if err := mailer.Send(event.To, event.Subject, event.Body); err != nil {
					log.Println("Failed to deliver notification:", err)
				}
			}
		}
	}()
	return nil
}
