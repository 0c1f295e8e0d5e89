package models

import (
	"time"
)

// Message представляет одно сообщение в переписке между админом и пользователем
type Message struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID   int64     `gorm:"column:sender_id;not null" json:"sender_id"`
	ReceiverID int64     `gorm:"column:receiver_id;not null" json:"receiver_id"`
	Body       string    `gorm:"column:message;type:text;not null" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName возвращает имя таблицы для модели Message
func (Message) TableName() string {
	return "messages"
}
