package db

import (
	"fmt"

	"adminchat/models"

	"gorm.io/gorm"
)

// Migrate создает таблицы и вспомогательные индексы для запросов переписки
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return createMessageIndexes(db)
}

// createMessageIndexes создает индексы на messages:
// (sender_id, receiver_id) для выборки переписки, created_at для сортировки,
// is_read для подсчета непрочитанных.
func createMessageIndexes(db *gorm.DB) error {
	indexes := map[string]string{
		"idx_messages_sender_receiver": "CREATE INDEX IF NOT EXISTS idx_messages_sender_receiver ON messages (sender_id, receiver_id)",
		"idx_messages_created_at":      "CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages (created_at)",
		"idx_messages_is_read":         "CREATE INDEX IF NOT EXISTS idx_messages_is_read ON messages (is_read)",
	}
	for name, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}
	return nil
}
